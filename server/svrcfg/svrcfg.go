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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/server/logger"
)

// DefaultSpinTimeout 單一 spin 請求的等待上限（轉動＋慶祝）
const DefaultSpinTimeout = 20 * time.Second

// SvrCfg server 組裝所需的已建好依賴
type SvrCfg struct {
	Log         *slog.Logger
	Runtime     *reelslot.Runtime
	Addr        string
	SpinTimeout time.Duration
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewConfig("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.SpinTimeout <= 0 {
		sc.SpinTimeout = DefaultSpinTimeout
	}
	if sc.Runtime == nil {
		return errs.NewConfig("runtime is required")
	}
	return nil
}
