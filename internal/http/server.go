// Package http exposes the ledger as a JSON API. Authentication happens
// upstream: a gateway injects X-User-Id / X-User-Email headers, and the
// approval gate decides whether that identity may use the service.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/middleware/ratelimit"
	"contas/internal/middleware/security"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

type Server struct {
	http.Server

	ledger     *services.LedgerService
	categories *services.CategoryService
	approvals  *services.ApprovalService
	ready      func(context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector

	summaryCache *cache.LRUCache[core.MonthSummary]
	listCache    *cache.LRUCache[[]core.Transaction]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. ready is the readiness probe,
// usually the database ping; nil means always ready.
func NewServer(addr string,
	ledger *services.LedgerService,
	categories *services.CategoryService,
	approvals *services.ApprovalService,
	ready func(context.Context) error,
) *Server {
	s := &Server{
		ledger:     ledger,
		categories: categories,
		approvals:  approvals,
		ready:      ready,

		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: security.NewDetector(),

		summaryCache: cache.NewLRUCache[core.MonthSummary](100, 5*time.Minute),
		listCache:    cache.NewLRUCache[[]core.Transaction](200, time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.listCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET /api/transactions", s.handleListTransactions)
	api.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/summary", s.handleSummary)
	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("PATCH /api/categories/{id}", s.handleRenameCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	api.HandleFunc("GET /api/access-requests", s.handleListAccessRequests)
	api.HandleFunc("PUT /api/access-requests/{email}", s.handleSetApproval)
	mux.Handle("/api/", s.requireApproval(api))

	headers := security.NewHeadersMiddleware(security.APIHeadersConfig())
	traced := trace.NewMiddleware(s.detector.ExtractClientIP)
	limited := s.limiter.Middleware(s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           headers.Middleware(traced.Middleware(limited(s.rejectSuspicious(mux)))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) rejectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason, ok := s.detector.Suspect(r); ok {
			slog.Warn("request rejected",
				"reason", reason,
				"ip", s.detector.ExtractClientIP(r),
				"path", r.URL.Path)
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateCaches drops cached reads after any write. Entries are keyed per
// owner and month; purging everything is simpler than tracking which keys a
// write touches, and the caches refill on the next read.
func (s *Server) invalidateCaches() {
	s.summaryCache.Purge()
	s.listCache.Purge()
}

// Shutdown stops background cleanup goroutines alongside the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
