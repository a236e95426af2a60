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

package reel

// State 單一轉輪的狀態。
//
//	Idle -> Spinning -> Stopping -> Stopped -> Idle
//
// Stopped 回到 Idle 由 Rearm 觸發；仍在 Stopped 時呼叫 StartSpin 也會先經過 Idle。
type State uint8

const (
	Idle State = iota
	Spinning
	Stopping
	Stopped
)

var stateName = [...]string{
	Idle:     "idle",
	Spinning: "spinning",
	Stopping: "stopping",
	Stopped:  "stopped",
}

func (s State) String() string {
	if int(s) < len(stateName) {
		return stateName[s]
	}
	return "unknown"
}

// Moving 是否仍在轉動（含減速中）
func (s State) Moving() bool { return s == Spinning || s == Stopping }
