package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 模擬統計報告
type StatReport struct {
	Summary  *SummaryReport  `json:"Summary"`
	Symbols  []SymbolReport  `json:"Symbols"`
	Patterns []PatternReport `json:"Patterns"`
	Dist     *DistReport     `json:"Dist"`
	Session  *SessionReport  `json:"Session,omitzero"`
	isDone   bool
}

type SummaryReport struct {
	GameName    string  `json:"GameName"`
	Rounds      int     `json:"Rounds"`
	TotalDelta  int64   `json:"TotalDelta"`
	DeltaSqSum  float64 `json:"DeltaSqSum"` // 平方和（float 避免溢位）
	MeanDelta   float64 `json:"MeanDelta"`
	MeanCI      CI      `json:"MeanCI"`
	Std         float64 `json:"Std"`
	Cv          float64 `json:"Cv"`
	MaxDelta    int64   `json:"MaxDelta"`
	NoWinRounds int     `json:"NoWinRounds"`
	HitRate     float64 `json:"HitRate"`
	HitCI       CI      `json:"HitCI"`
	Saturations int     `json:"Saturations"`
}

// SymbolReport 單一圖標的中獎統計
type SymbolReport struct {
	ID      int     `json:"ID"`
	Name    string  `json:"Name"`
	Value   int     `json:"Value"`
	Wins    int     `json:"Wins"`
	Score   int64   `json:"Score"`
	WinRate float64 `json:"WinRate"`
	WinCI   CI      `json:"WinCI"`
}

// PatternReport 倍數樣式命中統計（依樣式順序）
type PatternReport struct {
	Name       string  `json:"Name"`
	Multiplier int     `json:"Multiplier"`
	Hits       int     `json:"Hits"`
	HitRate    float64 `json:"HitRate"`
}

// DistReport 分數區間落點統計
type DistReport struct {
	ScoreUnit int       `json:"ScoreUnit"`
	Bucket    []string  `json:"Bucket"`
	Collect   []int     `json:"Collect"`
	Dist      []float64 `json:"Dist"`
}

// SessionReport 單一 session 的結局（多 session 模擬才有）
type SessionReport struct {
	FinalTotal  int64 `json:"FinalTotal"`
	MaxTotal    int64 `json:"MaxTotal"`
	Saturations int   `json:"Saturations"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 統計過程只處理整數紀錄，完成後請呼叫 Done 一次性計算比率與信賴區間。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	sm := s.Summary
	n := sm.Rounds
	sm.MeanDelta = s.Mean()
	sm.Std = s.Std()
	sm.Cv = s.Cv()
	sm.MeanCI = s.Ci()
	hits := n - sm.NoWinRounds
	sm.HitRate, sm.HitCI = proportionCICP(hits, n, 0.95)

	for i := range s.Symbols {
		sr := &s.Symbols[i]
		sr.WinRate, sr.WinCI = proportionCICP(sr.Wins, n, 0.95)
	}
	for i := range s.Patterns {
		if n > 0 {
			s.Patterns[i].HitRate = float64(s.Patterns[i].Hits) / float64(n)
		}
	}
	if s.Dist != nil {
		s.Dist.Dist = make([]float64, len(s.Dist.Collect))
		if n > 0 {
			for i, c := range s.Dist.Collect {
				s.Dist.Dist[i] = float64(c) / float64(n)
			}
		}
	}
	s.isDone = true
}

// Mean 回傳每局平均得分
func (s *StatReport) Mean() float64 {
	if s.Summary.Rounds == 0 {
		return 0
	}
	return float64(s.Summary.TotalDelta) / float64(s.Summary.Rounds)
}

// Std 回傳單局得分的樣本標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)
	sum := float64(s.Summary.TotalDelta)
	variance := (s.Summary.DeltaSqSum - sum*sum/rounds) / (rounds - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局得分的變異係數
func (s *StatReport) Cv() float64 {
	mean := s.Mean()
	if mean <= 0 {
		return 0
	}
	return s.Std() / mean
}

// Ci 回傳平均得分的 95% 信賴區間
func (s *StatReport) Ci() CI {
	mean := s.Mean()
	se := float64(0)
	if s.Summary.Rounds > 1 {
		se = s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(mean-1.96*se, 0.0),
		Hi: mean + 1.96*se,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// Fprint 以表格輸出摘要與各圖標統計
func (s *StatReport) Fprint(w io.Writer, ut time.Duration) {
	s.Done()
	fmt.Fprint(w, formatDuration(ut, s.Summary.Rounds))
	sk, sm := s.fmtBasic()
	fmt.Fprintln(w, fmtTable(s.Summary.GameName, sk, sm))
	yk, ym := s.fmtSymbols()
	fmt.Fprintln(w, fmtTable("Symbols", yk, ym))
	if len(s.Patterns) > 0 {
		pk, pm := s.fmtPatterns()
		fmt.Fprintln(w, fmtTable("Patterns", pk, pm))
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sm := s.Summary
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", sm.GameName),
		"Total Rounds": p.Sprintf("%d", sm.Rounds),
		"Total Score":  p.Sprintf("%d", sm.TotalDelta),
		"Mean / Round": p.Sprintf("%.3f", sm.MeanDelta),
		"Mean 95% CI":  p.Sprintf("[%.3f,%.3f]", sm.MeanCI.Lo, sm.MeanCI.Hi),
		"Max / Round":  p.Sprintf("%d", sm.MaxDelta),
		"Hit Rate":     p.Sprintf("%.4f %%", 100.0*sm.HitRate),
		"Hit 95% CI":   p.Sprintf("[%.4f%%,%.4f%%]", 100.0*sm.HitCI.Lo, 100.0*sm.HitCI.Hi),
		"NoWin Rounds": p.Sprintf("%d", sm.NoWinRounds),
		"Saturations":  p.Sprintf("%d", sm.Saturations),
		"STD":          p.Sprintf("%.3f", sm.Std),
		"CV":           p.Sprintf("%.3f", sm.Cv),
	}
	keys := []string{"Game Name", "Total Rounds", "Total Score", "Mean / Round", "Mean 95% CI", "Max / Round", "Hit Rate", "Hit 95% CI", "NoWin Rounds", "Saturations", "STD", "CV"}
	return keys, basic
}

func (s *StatReport) fmtSymbols() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(s.Symbols))
	msg := make(map[string]string, len(s.Symbols))
	for _, sr := range s.Symbols {
		k := fmt.Sprintf("%s (%d)", sr.Name, sr.Value)
		keys = append(keys, k)
		msg[k] = p.Sprintf("%d wins  %.4f%%  score %d", sr.Wins, 100.0*sr.WinRate, sr.Score)
	}
	return keys, msg
}

func (s *StatReport) fmtPatterns() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(s.Patterns))
	msg := make(map[string]string, len(s.Patterns))
	for i, pr := range s.Patterns {
		k := fmt.Sprintf("#%d %s x%d", i, pr.Name, pr.Multiplier)
		keys = append(keys, k)
		msg[k] = p.Sprintf("%d hits  %.4f%%", pr.Hits, 100.0*pr.HitRate)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
