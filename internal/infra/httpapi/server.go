package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Recommender is the request-handling surface the API exposes.
type Recommender interface {
	Recommend(ctx context.Context, query string) (domain.RecommendationResult, error)
	Catalog(ctx context.Context) (domain.Catalog, error)
}

// TimeoutProvider supplies the per-request wall-clock budget.
type TimeoutProvider interface {
	RecommenderSettings() domain.RecommenderConfig
}

// Server serves the inbound JSON API.
type Server struct {
	addr        string
	recommender Recommender
	timeouts    TimeoutProvider
	logger      *zap.Logger
}

func NewServer(addr string, recommender Recommender, timeouts TimeoutProvider, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:        addr,
		recommender: recommender,
		timeouts:    timeouts,
		logger:      logger.Named("httpapi"),
	}
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/recommend", s.handleRecommend)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.withRequestID(s.withRecovery(s.withLogging(mux)))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("api server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("api server shutdown error", zap.Error(err))
			return err
		}
		s.logger.Info("api server stopped")
		return nil
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.timeouts == nil {
		return domain.DefaultRequestTimeoutSeconds * time.Second
	}
	if timeout := s.timeouts.RecommenderSettings().RequestTimeout(); timeout > 0 {
		return timeout
	}
	return domain.DefaultRequestTimeoutSeconds * time.Second
}
