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
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
)

// 用法: go run ./scripts <task>
//
//	test         go test ./... -cover -count=1，只顯示 ok/FAIL
//	test-race    同上加 -race（轉輪與 session 大量使用 goroutine）
//	test-detail  verbose，濾掉 [no test files]
//	sim          以內建經典盤跑 100 萬局
//	play         無畫面快轉玩 10 局
var tasks = map[string]func() error{
	"test":        func() error { return goTest(summaryOnly, "-cover", "-count=1") },
	"test-race":   func() error { return goTest(summaryOnly, "-race", "-count=1") },
	"test-detail": func() error { return goTest(skipNoTests, "-v", "-count=1") },
	"sim": func() error {
		return passthrough("go", "run", "./cmd/run", "-rounds", "250000", "-worker", "4")
	},
	"play": func() error {
		return passthrough("go", "run", "./cmd/play", "-spins", "10", "-speed", "4", "-log", "dev")
	},
}

func main() {
	if len(os.Args) < 2 {
		color.Yellow("Usage: go run ./scripts [test|test-race|test-detail|sim|play]")
		os.Exit(1)
	}
	task, ok := tasks[os.Args[1]]
	if !ok {
		color.Yellow("Unknown task: %s", os.Args[1])
		os.Exit(1)
	}
	color.Green("running %s", os.Args[1])
	if err := task(); err != nil {
		color.Red("\n%s finished with errors: %v", os.Args[1], err)
		os.Exit(1)
	}
}

// lineFilter 回傳 false 表示略過該行
type lineFilter func(line string) bool

func summaryOnly(line string) bool {
	return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
		strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
}

func skipNoTests(line string) bool {
	return !strings.Contains(line, "[no test files]")
}

func goTest(keep lineFilter, flags ...string) error {
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		color.Red(err.Error())
	}
	cmd := exec.Command("go", append([]string{"test", "./..."}, flags...)...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	// 2>&1：編譯錯誤在 stderr
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		if !keep(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			color.Green(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "failed"):
			color.Red(line)
		default:
			fmt.Println(line)
		}
	}
	return cmd.Wait()
}

func passthrough(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
