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

package present

import "sync"

// CueEvent 一筆音效事件
type CueEvent struct {
	Name string
	Stop bool
}

// CueLog 記錄所有音效事件，可選擇讓指定 cue 回傳錯誤。
// 用於觀察「一局只響一次 spin」「每個群組一次 win」這類節奏。
type CueLog struct {
	mu     sync.Mutex
	events []CueEvent
	Fail   map[string]error
}

func (c *CueLog) PlayCue(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, CueEvent{Name: name})
	return c.Fail[name]
}

func (c *CueLog) StopCue(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, CueEvent{Name: name, Stop: true})
	return nil
}

func (c *CueLog) Events() []CueEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CueEvent(nil), c.events...)
}

// Plays 回傳 name 被播放的次數
func (c *CueLog) Plays(name string) int {
	n := 0
	for _, e := range c.Events() {
		if e.Name == name && !e.Stop {
			n++
		}
	}
	return n
}
