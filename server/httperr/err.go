// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/reelslot/errs"
)

// Body 錯誤回應的 JSON 結構
type Body struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408
//   - errs.Busy          → 409（上一局尚未結束）
//   - errs.NotFound      → 404
//   - errs.Invariant     → 409（流程誤用，例如刪除轉動中的 session）
//   - errs.Transient     → 503
//   - errs.Config 與其他 → 500
//
// 本函數屬於 HTTP 邊界層，核心 errs 不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	switch errs.KindOf(err) {
	case errs.Busy, errs.Invariant:
		return http.StatusConflict
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Transient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest 請求本身無法解析（body/參數），固定 400
func BadRequest(w http.ResponseWriter, msg string) {
	write(w, http.StatusBadRequest, Body{Error: msg, Kind: "bad_request"})
}

func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	write(w, StatusCode(err), Body{Error: err.Error(), Kind: errs.KindOf(err).String()})
}

func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == 408 || status == 409 || status == 429:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	}
}

func write(w http.ResponseWriter, status int, b Body) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}
