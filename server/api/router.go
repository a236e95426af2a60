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

package api

import (
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/reelslot/server/api/v1"
	"github.com/zintix-labs/reelslot/server/netsvr"
	"github.com/zintix-labs/reelslot/server/netsvr/middleware"
	"github.com/zintix-labs/reelslot/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerHealth(svr, sCfg)         // 2. 健康檢查
	registerV1API(svr, sCfg)          // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func registerHealth(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if sCfg.Runtime.Closed() {
			http.Error(w, "runtime closed", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	h := v1.NewSessionHandler(sCfg)
	s := v1.NewSimHandler(sCfg.Runtime)
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Post("/sessions", h.Create)
		vOne.Get("/sessions/{id}", h.Get)
		vOne.Delete("/sessions/{id}", h.Delete)
		vOne.Post("/sessions/{id}/spin", h.Spin)
		vOne.Post("/sessions/{id}/clear", h.Clear)
		vOne.Get("/sessions/{id}/rng", h.Snapshot)
		vOne.Put("/sessions/{id}/rng", h.Restore)
		vOne.Get("/paytable", h.Paytable)

		vOne.Get("/sim", s.Sim)
		vOne.Get("/simsessions", s.SimSessions)
	})
}
