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

package dto

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/reelslot/errs"
	"github.com/zintix-labs/reelslot/sdk/buf"
)

func TestDecodeCreateSessionEmptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	req, err := DecodeCreateSession(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Seed != nil {
		t.Fatalf("expected nil seed, got %v", *req.Seed)
	}
}

func TestDecodeCreateSessionSeed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{"seed":42}`))
	req, err := DecodeCreateSession(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Seed == nil || *req.Seed != 42 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewBufferString(`{"seed":1,"bet":10}`))
	if _, err := DecodeCreateSession(r); err == nil {
		t.Fatalf("expected error for unknown field")
	} else if !errs.IsKind(err, errs.Config) {
		t.Fatalf("expected config kind, got %v", err)
	}
}

func TestDecodeRNGState(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/v1/sessions/x/rng", bytes.NewBufferString(`{"state_b64u":"AQID"}`))
	req, err := DecodeRNGState(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, err := req.State()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(st, []byte{1, 2, 3}) {
		t.Fatalf("unexpected state: %v", st)
	}
	if NewRNGStateDTO(st).StateB64U != "AQID" {
		t.Fatalf("encode mismatch")
	}

	empty := &RNGStateDTO{}
	if _, err := empty.State(); !errs.IsKind(err, errs.Config) {
		t.Fatalf("expected config error, got %v", err)
	}
	bad := &RNGStateDTO{StateB64U: "!!"}
	if _, err := bad.State(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewOutcomeDTO(t *testing.T) {
	g := buf.NewGrid(3, 3)
	for i := range g.Cells {
		g.Cells[i] = buf.Cell{ID: 1, Value: 1}
	}
	g.Set(2, 0, buf.Cell{ID: 9, Value: 9})
	out := &buf.Outcome{
		Round: "r1",
		Grid:  g,
		Groups: []buf.WinGroup{{
			SymbolID:  1,
			Name:      "one",
			BaseValue: 1,
			Cells:     []buf.Pos{{Reel: 0, Row: 1}, {Reel: 1, Row: 1}, {Reel: 2, Row: 1}},
			Patterns:  []int{0},
			Multiply:  3,
			Score:     3,
		}},
		Delta: 3,
		Total: 3,
	}
	dto, err := NewOutcomeDTO(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dto.Screen) != 3 || len(dto.Screen[0]) != 3 {
		t.Fatalf("unexpected screen shape: %v", dto.Screen)
	}
	// [row][reel]
	if dto.Screen[0][2] != 9 || dto.Screen[2][0] != 1 {
		t.Fatalf("unexpected screen: %v", dto.Screen)
	}
	if len(dto.Groups) != 1 || dto.Groups[0].Cells[0] != [2]int{1, 0} {
		t.Fatalf("unexpected groups: %+v", dto.Groups)
	}

	if _, err := NewOutcomeDTO(nil); !errs.IsKind(err, errs.Invariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}
