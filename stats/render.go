package stats

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/zintix-labs/reelslot/errs"
	"gopkg.in/yaml.v3"
)

// StatReportRender 定義輸出行為
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

// Json渲染
type JsonStatReportRender struct{}

func (jr *JsonStatReportRender) Write(w io.Writer, r *StatReport) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLStatReportRender struct{}

func (yr *YAMLStatReportRender) Write(w io.Writer, r *StatReport) error {
	return forceReadableList(w, r)
}

// Format 模擬結果的輸出格式
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", errs.Configf("unknown format %q", s)
}

// SimReport 一次模擬的完整輸出；CLI 與 HTTP 共用同一份結構。
// Sessions 只有 session 模擬時才有值。
type SimReport struct {
	Seed     int64              `json:"seed" yaml:"seed"`
	Stats    *StatReport        `json:"stats" yaml:"stats"`
	Sessions *EstimatorSessions `json:"est,omitempty" yaml:"est,omitempty"`
	UsedMs   int64              `json:"used_ms" yaml:"used_ms"`

	used time.Duration
}

func NewSimReport(seed int64, st *StatReport, est *EstimatorSessions, used time.Duration) *SimReport {
	return &SimReport{Seed: seed, Stats: st, Sessions: est, UsedMs: used.Milliseconds(), used: used}
}

func (r *SimReport) Write(w io.Writer, f Format) error {
	if r.Stats == nil {
		return errs.NewInvariant("sim report without stats")
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		return forceReadableList(w, r)
	case FormatTable, "":
		r.Stats.Fprint(w, r.used)
		if r.Sessions != nil {
			r.Sessions.Fprint(w)
		}
		return nil
	}
	return errs.Configf("unknown format %q", f)
}

// forceReadableList 以 yaml.Node 編碼，最內層的一維序列改成 flow style，外層維度維持展開
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	flowLeafSequences(&node)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// flowLeafSequences 回傳 n 是否為序列；不含子序列的序列標成 flow
func flowLeafSequences(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	nested := false
	for _, c := range n.Content {
		if flowLeafSequences(c) {
			nested = true
		}
	}
	if n.Kind != yaml.SequenceNode {
		return false
	}
	if !nested {
		n.Style = yaml.FlowStyle
	}
	return true
}
