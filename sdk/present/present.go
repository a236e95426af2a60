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

// Package present 定義核心所依賴的表現層協作者（繪製、資源、音效），只描述介面邊界。
package present

// Animation 是單一圖標的動畫把手。
type Animation interface {
	// Play 從頭播放，回傳的 channel 在動畫播放完成時關閉。
	Play() <-chan struct{}
	Stop()
	MoveTo(x, y float64)
	SetVisible(bool)
	// Detach 從場景移除；之後不可再使用。
	Detach()
}

// Stage 是繪製與資源協作者：Resolve 保證動畫幀組可用，NewAnimation 建立把手並掛上場景。
type Stage interface {
	Resolve(name string) error
	NewAnimation(name string) (Animation, error)
}

// Audio 以字串鍵值播放/停止音效；失敗屬於表現層暫時錯誤。
type Audio interface {
	PlayCue(name string) error
	StopCue(name string) error
}
