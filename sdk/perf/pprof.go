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

// Package perf 為模擬器 CLI 提供 pprof 包裝，輸出可直接給 go tool pprof 或 PGO 使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/reelslot/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Mode 支援的 profiling 種類
type Mode string

const (
	ModeNone   Mode = ""
	ModeCPU    Mode = "cpu"
	ModeHeap   Mode = "heap"
	ModeAllocs Mode = "allocs"
)

// ParseMode 未知的字串回傳 Config 錯誤
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeCPU, ModeHeap, ModeAllocs:
		return m, nil
	}
	return ModeNone, errs.Configf("unknown pprof mode %q (want cpu|heap|allocs)", s)
}

// Run 依 mode 包住 exe；ModeNone 直接執行。
//
// exe 的錯誤優先回傳，profile 寫檔失敗次之。
func Run(dir string, mode Mode, exe func() error) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case ModeNone:
		return exe()
	case ModeCPU:
		return cpu(dir, exe)
	case ModeHeap:
		return snapshot(dir, "heap", exe)
	case ModeAllocs:
		return snapshot(dir, "allocs", exe)
	}
	return errs.Configf("unknown pprof mode %q", mode)
}

func create(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create profiling dir failed")
	}
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "create "+name+".pprof failed")
	}
	return f, nil
}

func cpu(dir string, exe func() error) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 之後寫出一次 profile；heap 前先 GC，讓 live objects 較準確
func snapshot(dir, name string, exe func() error) error {
	if err := exe(); err != nil {
		return err
	}
	f, err := create(dir, name)
	if err != nil {
		return err
	}
	defer f.Close()
	if name == "heap" {
		runtime.GC()
	}
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Configf("profile %s not found", name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile failed")
	}
	return nil
}
