package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cfgpkg "github.com/max-niederman/beryl/internal/config"
	"github.com/max-niederman/beryl/internal/runtime"
	"github.com/max-niederman/beryl/pkg/crystal"
	logpkg "github.com/max-niederman/beryl/pkg/log"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
	return New(rt, logger)
}

func TestHealthHandler(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestAllocateHandler(t *testing.T) {
	s := newServer(t)
	body := `{"name":"api"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/producers/allocate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status: %d", w.Code)
	}
	var resp allocateResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Name != "api" || resp.Producer != 0 {
		t.Fatalf("resp: %+v", resp)
	}

	// Missing name is a client error.
	req = httptest.NewRequest(http.MethodPost, "/v1/producers/allocate", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestMintHandler(t *testing.T) {
	s := newServer(t)
	body := `{"producer":3,"count":5}`
	req := httptest.NewRequest(http.MethodPost, "/v1/crystals/mint", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Crystals []mintedCrystal `json:"crystals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Crystals) != 5 {
		t.Fatalf("count: %d", len(resp.Crystals))
	}
	for _, mc := range resp.Crystals {
		c := crystal.FromInt64(mc.ID)
		if c.Producer() != 3 {
			t.Fatalf("producer: %d", c.Producer())
		}
		if c.String() != mc.Hex {
			t.Fatalf("hex mismatch: %s vs %s", c.String(), mc.Hex)
		}
	}
}

func TestMintHandlerByName(t *testing.T) {
	s := newServer(t)
	body := `{"name":"worker","count":1}`
	req := httptest.NewRequest(http.MethodPost, "/v1/crystals/mint", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestMintHandlerRejectsBadRequests(t *testing.T) {
	s := newServer(t)

	for _, body := range []string{
		`{}`,                             // neither producer nor name
		`{"producer":3,"count":1000000}`, // oversized batch
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/crystals/mint", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status %d", body, w.Code)
		}
	}
}

func TestInspectHandler(t *testing.T) {
	s := newServer(t)
	c := crystal.NewUnchecked(42, 7, 123456)

	for _, id := range []string{
		fmt.Sprintf("%d", c.Int64()),
		c.String(),
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/crystals/inspect?id="+id, nil)
		w := httptest.NewRecorder()
		s.srv.Handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("id %s: status %d", id, w.Code)
		}
		var resp inspectResp
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Producer != 42 || resp.Sequence != 7 || resp.Timestamp != 123456 {
			t.Fatalf("id %s: parts %+v", id, resp.Parts)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/crystals/inspect?id=bogus", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus id: status %d", w.Code)
	}
}

func TestProducersHandler(t *testing.T) {
	s := newServer(t)
	if _, err := s.mint.Allocate("api"); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/producers", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"api"`) {
		t.Fatalf("body: %s", w.Body.String())
	}
}
