package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/max-niederman/beryl/internal/minter"
	"github.com/max-niederman/beryl/internal/registry"
	"github.com/max-niederman/beryl/internal/runtime"
	"github.com/max-niederman/beryl/pkg/crystal"
	"github.com/max-niederman/beryl/pkg/log"
)

type Server struct {
	rt     *runtime.Runtime
	mint   *minter.Service
	srv    *http.Server
	lis    net.Listener
	logger log.Logger
}

func New(rt *runtime.Runtime, logger log.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		rt:     rt,
		mint:   minter.New(rt, logger),
		srv:    &http.Server{Handler: cors(mux)},
		logger: logger.WithComponent("http"),
	}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/producers/allocate", s.handleAllocate)
	mux.HandleFunc("/v1/producers", s.handleProducers)
	mux.HandleFunc("/v1/crystals/mint", s.handleMint)
	mux.HandleFunc("/v1/crystals/inspect", s.handleInspect)
	return s
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("listening", log.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type allocateReq struct {
	Name string `json:"name"`
}

type allocateResp struct {
	Name     string `json:"name"`
	Producer uint16 `json:"producer"`
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req allocateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	rec, err := s.mint.Allocate(req.Name)
	if err != nil {
		if errors.Is(err, registry.ErrSpaceFull) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		s.logger.Error("allocate failed", log.Str("name", req.Name), log.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(allocateResp{Name: rec.Name, Producer: rec.ProducerID})
}

func (s *Server) handleProducers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	records, err := s.rt.Registry().List()
	if err != nil {
		s.logger.Error("list producers failed", log.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"producers": records})
}

type mintReq struct {
	Producer *uint16 `json:"producer"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
}

type mintedCrystal struct {
	ID  int64  `json:"id"`
	Hex string `json:"hex"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mintReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	var crystals []crystal.Crystal
	var err error
	switch {
	case req.Producer != nil:
		crystals, err = s.mint.Mint(*req.Producer, req.Count)
	case req.Name != "":
		crystals, err = s.mint.MintFor(req.Name, req.Count)
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err != nil {
		if errors.Is(err, minter.ErrBatchSize) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var oob *crystal.PartOutOfBoundsError
		if errors.As(err, &oob) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.logger.Error("mint failed", log.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	out := make([]mintedCrystal, len(crystals))
	for i, c := range crystals {
		out[i] = mintedCrystal{ID: c.Int64(), Hex: c.String()}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"crystals": out})
}

type inspectResp struct {
	crystal.Parts
	ID   int64  `json:"id"`
	Hex  string `json:"hex"`
	Time string `json:"time"`
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := r.URL.Query().Get("id")
	if raw == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	c, err := parseCrystal(raw)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(inspectResp{
		Parts: c.Parts(),
		ID:    c.Int64(),
		Hex:   c.String(),
		Time:  c.Time(s.rt.Epoch()).UTC().Format(time.RFC3339Nano),
	})
}

// parseCrystal accepts the signed decimal form or the 16-digit hex form.
// Decimal wins when a 16-digit input parses as both.
func parseCrystal(raw string) (crystal.Crystal, error) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return crystal.FromInt64(v), nil
	}
	if len(raw) == 16 {
		return crystal.ParseString(raw)
	}
	return 0, fmt.Errorf("invalid crystal id %q", raw)
}
