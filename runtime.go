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

package reelslot

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
	"github.com/zintix-labs/reelslot/sdk/core"
	"github.com/zintix-labs/reelslot/spec"
)

var (
	ErrSessionNotFound = errs.New(errs.NotFound, "session not found")
	ErrRuntimeFull     = errs.New(errs.Busy, "session limit reached")
)

// RuntimeOptions Runtime 的建構參數
type RuntimeOptions struct {
	Deps        Deps
	MaxSessions int   // <= 0 表示不限制
	Seed        int64 // 0 表示以 crypto/rand 產生
}

// Runtime 多 session 的登錄表，供 HTTP 服務使用。
//
// 所有 session 共用同一份設定、表現層與時鐘；每個 session 的 seed 由 seedMaker 派生，
// 因此在固定 Seed 下整個 runtime 可重現。
type Runtime struct {
	gs    *spec.GameSetting
	cf    core.PRNGFactory
	deps  Deps
	seeds *seedMaker
	max   int

	mu       sync.RWMutex
	sessions map[string]*Session

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

func NewRuntime(gs *spec.GameSetting, cf core.PRNGFactory, opt RuntimeOptions) (*Runtime, error) {
	if gs == nil {
		return nil, errs.NewConfig("game setting required")
	}
	if cf == nil {
		return nil, errs.NewConfig("prng factory required")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	seed := opt.Seed
	if seed == 0 {
		s, err := cryptoSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	opt.Deps.fill()
	return &Runtime{
		gs:       gs,
		cf:       cf,
		deps:     opt.Deps,
		seeds:    newSeedMaker(seed),
		max:      opt.MaxSessions,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}, nil
}

// Setting 回傳共用的遊戲設定（只讀）
func (rt *Runtime) Setting() *spec.GameSetting { return rt.gs }

// NewSimulator 以 runtime 的設定與 PRNG 建立離線模擬器；seed 為 0 時隨機
func (rt *Runtime) NewSimulator(unit int, seed int64) (*Simulator, error) {
	if err := rt.alive(); err != nil {
		return nil, err
	}
	if seed == 0 {
		return NewSimulator(rt.gs, rt.cf, unit)
	}
	return NewSimulatorWithSeed(rt.gs, rt.cf, unit, seed)
}

// Create 建立新的 session 並回傳其 id
func (rt *Runtime) Create() (string, *Session, error) {
	return rt.create(rt.seeds.next())
}

// CreateWithSeed 以指定 seed 建立 session（重播用）
func (rt *Runtime) CreateWithSeed(seed int64) (string, *Session, error) {
	return rt.create(seed)
}

func (rt *Runtime) create(seed int64) (string, *Session, error) {
	if err := rt.alive(); err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	deps := rt.deps
	deps.Logger = rt.deps.Logger.With(slog.String("session", id))
	s, err := New(rt.gs, rt.cf, seed, deps)
	if err != nil {
		return "", nil, err
	}

	rt.mu.Lock()
	if rt.max > 0 && len(rt.sessions) >= rt.max {
		rt.mu.Unlock()
		_ = s.Close()
		return "", nil, ErrRuntimeFull
	}
	rt.sessions[id] = s
	rt.mu.Unlock()
	deps.Logger.Info("session created", slog.Int64("seed", seed))
	return id, s, nil
}

func (rt *Runtime) Get(id string) (*Session, error) {
	if err := rt.alive(); err != nil {
		return nil, err
	}
	rt.mu.RLock()
	s, ok := rt.sessions[id]
	rt.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Spin 對指定 session 執行一局
func (rt *Runtime) Spin(ctx context.Context, id string) (buf.Outcome, error) {
	select {
	case <-ctx.Done():
		return buf.Outcome{}, ctx.Err()
	case <-rt.done:
		rt.closed.Store(true)
		return buf.Outcome{}, errs.NewInvariant("runtime closed: " + rt.ClosedReason())
	default:
	}
	s, err := rt.Get(id)
	if err != nil {
		return buf.Outcome{}, err
	}
	return s.Spin(ctx)
}

// Delete 關閉並移除 session；轉動中回傳 ErrBusy 且保留 session。
func (rt *Runtime) Delete(id string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s, ok := rt.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if err := s.Close(); err != nil {
		return err
	}
	delete(rt.sessions, id)
	rt.deps.Logger.Info("session deleted", slog.String("session", id))
	return nil
}

// Len 目前存活的 session 數
func (rt *Runtime) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.sessions)
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
// 轉動中的 session 會被略過並記錄，其餘全部歸還實例。
func (rt *Runtime) Close() {
	rt.CloseWithReason("closed")
}

// CloseWithReason 同 Close，reason 之後可由 ClosedReason 取回（例如收到的信號）。
func (rt *Runtime) CloseWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)

		rt.mu.Lock()
		defer rt.mu.Unlock()
		total := len(rt.sessions)
		for id, s := range rt.sessions {
			if err := s.Close(); err != nil {
				rt.deps.Logger.Warn("session close failed", slog.String("session", id), slog.Any("err", err))
				continue
			}
			delete(rt.sessions, id)
		}
		rt.deps.Logger.Info("runtime closed",
			slog.String("reason", reason),
			slog.Int("sessions", total),
			slog.Int("left_busy", len(rt.sessions)),
		)
	})
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (rt *Runtime) alive() error {
	if rt.closed.Load() {
		return errs.NewInvariant("runtime closed: " + rt.ClosedReason())
	}
	return nil
}
