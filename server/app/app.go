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


// Package app 管理 server 的生命週期：啟動所有 Component，並在收到信號、
// 任一 Component 結束或 Stop 被呼叫時，依序關閉元件再執行收尾 hook。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultShutdownTimeout 關閉流程（元件 + hook）的總期限
const DefaultShutdownTimeout = 5 * time.Second

// Hook 收尾函數；reason 說明關閉原因（signal、component error、stop）。
type Hook func(ctx context.Context, reason string) error

type App struct {
	log     *slog.Logger
	timeout time.Duration
	comps   []Component
	hooks   []Hook

	stopOnce sync.Once
	stop     chan string
}

type Option func(*App)

func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func New(opts ...Option) *App {
	a := &App{
		log:     slog.New(slog.DiscardHandler),
		timeout: DefaultShutdownTimeout,
		stop:    make(chan string, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Register 加入一個長生命週期元件；關閉時依註冊順序呼叫 Shutdown。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnShutdown 加入收尾 hook，在所有 Component 關閉後依序執行。
// 典型用法：http server 停止收請求之後才關閉 runtime。
func (a *App) OnShutdown(h Hook) {
	a.hooks = append(a.hooks, h)
}

// Stop 要求 Run 以給定原因結束；可重複呼叫，只有第一次生效。
func (a *App) Stop(reason string) {
	a.stopOnce.Do(func() { a.stop <- reason })
}

// Run 阻塞直到收到 SIGINT/SIGTERM、Stop 被呼叫，或任一 Component.Run 返回。
// Component 返回的錯誤（含 nil 以外的任何錯誤）會在關閉完成後回傳。
func (a *App) Run() error {
	if len(a.comps) == 0 {
		return errors.New("app: no component registered")
	}
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var (
		reason string
		runErr error
	)
	select {
	case sig := <-quit:
		reason = "signal " + sig.String()
	case reason = <-a.stop:
	case runErr = <-errCh:
		reason = "component stopped"
	}
	a.log.Info("app shutting down", slog.String("reason", reason), slog.Any("err", runErr))
	if err := a.shutdown(reason); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) shutdown(reason string) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	start := time.Now()
	var all []error
	for i, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Warn("component shutdown failed", slog.Int("component", i), slog.Any("err", err))
			all = append(all, err)
		}
	}
	for i, h := range a.hooks {
		if err := h(ctx, reason); err != nil {
			a.log.Warn("shutdown hook failed", slog.Int("hook", i), slog.Any("err", err))
			all = append(all, err)
		}
	}
	a.log.Info("app stopped", slog.String("reason", reason), slog.Duration("took", time.Since(start)))
	return errors.Join(all...)
}
