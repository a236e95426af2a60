package v1

import (
	"net/http"
	"strconv"

	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/server/httperr"
	"github.com/zintix-labs/reelslot/stats"
)

const (
	maxSimRounds   = 1_000_000
	maxSimSessions = 10_000
	maxSimWorkers  = 8
)

// SimHandler 以 runtime 的遊戲設定做離線模擬；不經過轉輪動畫。
type SimHandler struct {
	rt *reelslot.Runtime
}

func NewSimHandler(rt *reelslot.Runtime) *SimHandler {
	return &SimHandler{rt: rt}
}

// simQuery 解析共用的查詢參數；缺省值: unit=DefaultScoreUnit, workers=1, seed 隨機
type simQuery struct {
	rounds  int
	unit    int
	workers int
	seed    int64
}

func parseSimQuery(r *http.Request, maxRounds int) (simQuery, error) {
	q := simQuery{unit: reelslot.DefaultScoreUnit, workers: 1}
	v := r.URL.Query()

	n, err := intParam(v.Get("rounds"), 0)
	if err != nil {
		return q, errs.NewConfig("rounds must be integer")
	}
	if n < 1 || n > maxRounds {
		return q, errs.Configf("rounds must be between 1 and %d", maxRounds)
	}
	q.rounds = n

	if q.unit, err = intParam(v.Get("unit"), q.unit); err != nil || q.unit < 1 {
		return q, errs.NewConfig("unit must be positive integer")
	}
	if q.workers, err = intParam(v.Get("workers"), q.workers); err != nil || q.workers < 1 || q.workers > maxSimWorkers {
		return q, errs.Configf("workers must be between 1 and %d", maxSimWorkers)
	}
	if s := v.Get("seed"); s != "" {
		if q.seed, err = strconv.ParseInt(s, 10, 64); err != nil {
			return q, errs.NewConfig("seed must be int64")
		}
	}
	return q, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func (sh *SimHandler) simulator(q simQuery) (*reelslot.Simulator, error) {
	return sh.rt.NewSimulator(q.unit, q.seed)
}

// Sim GET /v1/sim?rounds=&workers=&unit=&seed=
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	q, err := parseSimQuery(r, maxSimRounds)
	if err != nil {
		httperr.BadRequest(w, err.Error())
		return
	}
	sim, err := sh.simulator(q)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator failed"))
		return
	}
	st, used, err := sim.SimMP(q.rounds, q.workers, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate failed"))
		return
	}
	writeJSON(w, http.StatusOK, stats.NewSimReport(sim.Seed(), st, nil, used))
}

// SimSessions GET /v1/simsessions?sessions=&rounds=&workers=&unit=&seed=
func (sh *SimHandler) SimSessions(w http.ResponseWriter, r *http.Request) {
	q, err := parseSimQuery(r, 10_000)
	if err != nil {
		httperr.BadRequest(w, err.Error())
		return
	}
	sessions, err := intParam(r.URL.Query().Get("sessions"), 0)
	if err != nil || sessions < 1 || sessions > maxSimSessions {
		httperr.BadRequest(w, "sessions must be between 1 and 10000")
		return
	}
	sim, err := sh.simulator(q)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator failed"))
		return
	}
	st, est, used, err := sim.SimSessions(q.workers, sessions, q.rounds, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate failed"))
		return
	}
	writeJSON(w, http.StatusOK, stats.NewSimReport(sim.Seed(), st, est, used))
}
