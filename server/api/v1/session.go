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

package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/reelslot"
	"github.com/zintix-labs/reelslot/dto"
	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/server/httperr"
	"github.com/zintix-labs/reelslot/server/netsvr"
	"github.com/zintix-labs/reelslot/server/svrcfg"
)

// SessionHandler session 相關的 v1 endpoints
type SessionHandler struct {
	rt          *reelslot.Runtime
	log         *slog.Logger
	spinTimeout time.Duration
}

func NewSessionHandler(sCfg *svrcfg.SvrCfg) *SessionHandler {
	return &SessionHandler{rt: sCfg.Runtime, log: sCfg.Log, spinTimeout: sCfg.SpinTimeout}
}

// Create POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeCreateSession(r)
	if err != nil {
		httperr.BadRequest(w, err.Error())
		return
	}
	var (
		id string
		s  *reelslot.Session
	)
	if req.Seed != nil {
		id, s, err = h.rt.CreateWithSeed(*req.Seed)
	} else {
		id, s, err = h.rt.Create()
	}
	if err != nil {
		httperr.Log(h.log, "create session failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewSessionDTO(id, s))
}

// Get GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := netsvr.URLParam(r, "id")
	s, err := h.rt.Get(id)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSessionDTO(id, s))
}

// Spin POST /v1/sessions/{id}/spin
//
// 回應在轉輪停妥且慶祝動畫結束後才送出。請求逾時不會中斷已起轉的一局。
func (h *SessionHandler) Spin(w http.ResponseWriter, r *http.Request) {
	id := netsvr.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), h.spinTimeout)
	defer cancel()

	out, err := h.rt.Spin(ctx, id)
	if err != nil {
		httperr.Log(h.log, "spin failed", err)
		httperr.Errs(w, err)
		return
	}
	body, err := dto.NewOutcomeDTO(&out)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Clear POST /v1/sessions/{id}/clear
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id := netsvr.URLParam(r, "id")
	s, err := h.rt.Get(id)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := s.Clear(); err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSessionDTO(id, s))
}

// Delete DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rt.Delete(netsvr.URLParam(r, "id")); err != nil {
		httperr.Errs(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Snapshot GET /v1/sessions/{id}/rng
func (h *SessionHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	s, err := h.rt.Get(netsvr.URLParam(r, "id"))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	st, err := s.SnapshotRNG()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewRNGStateDTO(st))
}

// Restore PUT /v1/sessions/{id}/rng
func (h *SessionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeRNGState(r)
	if err != nil {
		httperr.BadRequest(w, err.Error())
		return
	}
	st, err := req.State()
	if err != nil {
		httperr.BadRequest(w, err.Error())
		return
	}
	s, err := h.rt.Get(netsvr.URLParam(r, "id"))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := s.RestoreRNG(st); err != nil {
		if errs.IsKind(err, errs.Config) {
			httperr.BadRequest(w, err.Error())
			return
		}
		httperr.Log(h.log, "restore rng failed", err)
		httperr.Errs(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Paytable GET /v1/paytable
func (h *SessionHandler) Paytable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reelslot.PaytableOf(h.rt.Setting()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
