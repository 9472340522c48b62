package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/apetrack-backend/internal/activity"
	"github.com/kjannette/apetrack-backend/internal/repository"
)

const maxQueryLimit = 1000

// FloorJobReporter exposes whether the background floor-price refresh is
// active, so the health endpoint can report it.
type FloorJobReporter interface {
	Running() bool
}

type Server struct {
	pool       *pgxpool.Pool
	activity   *activity.Service
	floorRepo  *repository.FloorPriceRepo
	runRepo    *repository.RunSummaryRepo
	httpServer *http.Server
	apiKey     string
	appName    string
	floorJob   FloorJobReporter
}

func NewServer(pool *pgxpool.Pool, svc *activity.Service, port int, apiKey, corsOrigin, appName string) *Server {
	s := &Server{
		pool:      pool,
		activity:  svc,
		floorRepo: repository.NewFloorPriceRepo(pool),
		runRepo:   repository.NewRunSummaryRepo(pool),
		apiKey:    apiKey,
		appName:   appName,
	}

	mux := http.NewServeMux()

	// Wallet routes
	mux.HandleFunc("GET /v1/wallets/{address}/ledger", s.handleWalletLedger)
	mux.HandleFunc("GET /v1/wallets/{address}/summary", s.handleWalletSummary)
	mux.HandleFunc("GET /v1/wallets/{address}/export", s.handleWalletExport)

	// Floor routes
	mux.HandleFunc("GET /v1/floors", s.handleFloors)
	mux.HandleFunc("GET /v1/floors/{contract}", s.handleFloorByContract)

	// Run history
	mux.HandleFunc("GET /v1/runs", s.handleRuns)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	handler := s.authMiddleware(corsMiddleware(mux, corsOrigin))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// AttachFloorJob registers the floor-price scheduler for health reporting.
// Call before Start.
func (s *Server) AttachFloorJob(job FloorJobReporter) {
	s.floorJob = job
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
