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

package clock

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
)

const (
	DefaultWheelTick = time.Millisecond
	DefaultWheelSize = 512
)

// Wheel 以分層時間輪排程所有等待，多個 session 共用同一個 Wheel 時不會各自建立 runtime timer。
type Wheel struct {
	tw   *timingwheel.TimingWheel
	once sync.Once
}

// NewWheel 建立並啟動時間輪；tick 最小為 1ms。
func NewWheel(tick time.Duration, size int64) *Wheel {
	if tick < time.Millisecond {
		tick = DefaultWheelTick
	}
	if size <= 0 {
		size = DefaultWheelSize
	}
	tw := timingwheel.NewTimingWheel(tick, size)
	tw.Start()
	return &Wheel{tw: tw}
}

func (w *Wheel) Now() time.Time { return time.Now() }

func (w *Wheel) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- time.Now()
		return ch
	}
	w.tw.AfterFunc(d, func() { ch <- time.Now() })
	return ch
}

// Stop 停止時間輪；尚未觸發的等待不會再觸發。可重複呼叫。
func (w *Wheel) Stop() {
	w.once.Do(w.tw.Stop)
}
