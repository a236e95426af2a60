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

// Package clock 提供可注入的時間來源：停輪間隔、固定轉動時間與幀迴圈都經由 Clock 排程，
// 測試時以 Manual 取代即可精準控制時間。
package clock

import (
	"context"
	"time"
)

// Clock 是計時協作者的最小合約。
type Clock interface {
	Now() time.Time
	// After 在 d 之後送出觸發時間；d <= 0 立即觸發。回傳的 channel 只會送出一次。
	After(d time.Duration) <-chan time.Time
}

// Sleep 等待 d，回傳觸發時間；ctx 結束時提早返回。
func Sleep(ctx context.Context, c Clock, d time.Duration) (time.Time, error) {
	select {
	case t := <-c.After(d):
		return t, nil
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}

// System 直接使用 time 套件，適合單元測試以外的簡單工具。
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scaled 將所有等待時間除以 Factor，用於快轉展示。
type Scaled struct {
	Base   Clock
	Factor float64
}

func (s Scaled) Now() time.Time { return s.Base.Now() }

func (s Scaled) After(d time.Duration) <-chan time.Time {
	if s.Factor <= 0 {
		return s.Base.After(d)
	}
	return s.Base.After(time.Duration(float64(d) / s.Factor))
}
