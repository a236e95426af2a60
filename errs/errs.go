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

package errs

import (
	"errors"
	"fmt"
	"log/slog"
)

// Kind : 錯誤分類，讓最上層知道該中止、回報還是吞掉
type Kind uint8

const (
	None Kind = iota
	// Config 設定錯誤：只會在組裝階段出現，必須阻止 session 啟動
	Config
	// Invariant 流程誤用：例如轉輪尚未停妥就讀取盤面，必須大聲失敗
	Invariant
	// Transient 表現層暫時性失敗（動畫/音效），記錄後吞掉
	Transient
	// Busy 重入保護：上一局尚未結束
	Busy
	// NotFound 查無資源（session id 等）
	NotFound
)

var kindMap = map[Kind]string{
	None:      "",
	Config:    "config",
	Invariant: "invariant",
	Transient: "transient",
	Busy:      "busy",
	NotFound:  "not_found",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文；Cause 串接下層錯誤。
type E struct {
	Message string
	Extra   string
	Cause   error
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("kind=%s %s", e.Kind, e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 以 Kind + Message 比對，讓套件層級的哨兵錯誤可以搭配 errors.Is 使用。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, msg string) *E {
	return &E{Message: msg, Kind: kind}
}

func NewConfig(msg string) *E    { return New(Config, msg) }
func NewInvariant(msg string) *E { return New(Invariant, msg) }
func NewTransient(msg string) *E { return New(Transient, msg) }

func Configf(format string, a ...any) *E {
	return NewConfig(fmt.Sprintf(format, a...))
}

func Invariantf(format string, a ...any) *E {
	return NewInvariant(fmt.Sprintf(format, a...))
}

func Transientf(format string, a ...any) *E {
	return NewTransient(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(kind Kind, msg string, extra string) *E {
	e := New(kind, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定訊息包裝底層錯誤。
//
// Kind 規則：
//   - 若 cause 已經是 *E，沿用其 Kind。
//   - 否則（標準庫或三方錯誤）一律視為 Config：外部錯誤只會在載入設定時出現。
func Wrap(cause error, msg string) *E {
	return WrapWithExtra(cause, msg, "")
}

// WrapWithExtra 同 Wrap，另外附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := NewWithExtra(KindOf(cause), msg, extra)
	r.Cause = cause
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// KindOf 取出錯誤分類；非本包錯誤視為 Config。nil 回傳 None。
func KindOf(err error) Kind {
	if err == nil {
		return None
	}
	if e, ok := AsErr(err); ok {
		return e.Kind
	}
	return Config
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Swallow 記錄並吞掉表現層錯誤，回傳是否真的有錯誤發生。
//
// 非 Transient 的錯誤也會被記錄，但呼叫端應只在確定可以忽略時使用。
func Swallow(log *slog.Logger, err error, attrs ...any) bool {
	if err == nil {
		return false
	}
	if log != nil {
		args := append([]any{slog.String("kind", KindOf(err).String()), slog.Any("err", err)}, attrs...)
		log.Warn("presentation failure swallowed", args...)
	}
	return true
}
