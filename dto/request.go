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

package dto

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zintix-labs/reelslot/corefmt"
	"github.com/zintix-labs/reelslot/errs"
)

// 防止 body 過大
const maxBody = 1 << 20

// CreateSessionRequest 建立 session；seed 缺省時由 runtime 派生
type CreateSessionRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

// State 解碼 RNG 快照；空字串視為錯誤
func (rs *RNGStateDTO) State() ([]byte, error) {
	if rs == nil || rs.StateB64U == "" {
		return nil, errs.NewConfig("state_b64u is required")
	}
	return corefmt.DecodeBase64URL(rs.StateB64U)
}

func DecodeCreateSession(r *http.Request) (*CreateSessionRequest, error) {
	req := new(CreateSessionRequest)
	if err := decodeOptionalJSON(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

func DecodeRNGState(r *http.Request) (*RNGStateDTO, error) {
	req := new(RNGStateDTO)
	if err := decodeOptionalJSON(r, req); err != nil {
		return nil, err
	}
	return req, nil
}

// decodeOptionalJSON 空 body 視為全部缺省；未知欄位一律拒絕，避免靜默丟資料。
func decodeOptionalJSON(r *http.Request, v any) error {
	if r == nil {
		return errs.NewInvariant("nil request")
	}
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errs.WrapWithExtra(err, "invalid json", r.URL.Path)
	}
	return nil
}
