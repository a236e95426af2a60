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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/reelslot/server"
	"github.com/zintix-labs/reelslot/server/svrcfg"
)

// reelslot HTTP 服務入口。設定檔可省略，全部欄位都有預設值，
// 也可以用 REELSLOT_ 前綴的環境變數覆寫（例如 REELSLOT_SERVER_ADDR）。
func main() {
	path := flag.String("config", "", "server config yaml (optional)")
	flag.Parse()

	fc, err := svrcfg.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	sCfg, cleanup, err := fc.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err = server.Run(sCfg)
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}
