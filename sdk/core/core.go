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

package core

import "sync"

// PRNG 定義轉輪抽取圖標所需的亂數來源，需同時支援取樣與狀態保存/還原。
//
// 所有隨機性都經由注入的 PRNG 取得，因此只要固定 seed，停輪結果與計分都能重現。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。相同 seed 必須產生相同的輸出序列。
	New(int64) PRNG
}

// DefaultPRNG 預設 PRNGFactory（PCG64）
type DefaultPRNG struct{}

func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG 並提供併發安全的取樣。
//
// 轉輪的幀迴圈與 HTTP handler 可能在不同 goroutine 取用同一個 Core，因此所有存取都經過 mu。
type Core struct {
	mu  sync.Mutex
	rng PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng: rng}
}

// IntN 回傳 [0,n) 的均勻亂數，n <= 0 回傳 -1
func (c *Core) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

// Uint64 回傳 uint64 亂數
func (c *Core) Uint64() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Uint64()
}

// Pick 從列表中均勻選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

func (c *Core) Snapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Snapshot()
}

func (c *Core) Restore(state []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Restore(state)
}
