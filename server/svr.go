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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/server/api"
	"github.com/zintix-labs/reelslot/server/app"
	"github.com/zintix-labs/reelslot/server/netsvr"
	"github.com/zintix-labs/reelslot/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（logger 與 runtime）。
//  2. 建立 HTTP server（netsvr），監聽 SvrCfg.Addr。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，關閉時一併關閉 runtime 內所有 session。
//
// Run 不綁定任何檔案路徑或環境變數策略；讀檔請見 svrcfg.Load。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但允許注入自訂的 NetSvr（例如掛到既有的 router 或自訂 timeout）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewConfig("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewConfig("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	// 註冊 Api
	api.RegisterRoutes(svr, sCfg)

	// 運行：http server 先關，之後才關 runtime
	rt := sCfg.Runtime
	a := app.New(app.WithLogger(sCfg.Log))
	a.Register(svr)
	a.OnShutdown(func(_ context.Context, reason string) error {
		rt.CloseWithReason(reason)
		return nil
	})
	if c, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[reelslot] listening on http://localhost" + c.Address())
	} else {
		sCfg.Log.Info("[reelslot] listening")
	}
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
