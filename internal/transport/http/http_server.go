package httpt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/config"
	"github.com/Karlitosantana/reima-resale/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// HTTPServer serves the item API. Shutdown is driven by context
// cancellation; the process-level signal handling lives in main.
type HTTPServer struct {
	server          *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

func NewHTTPServer(
	handler *ItemHandler,
	cfg *config.HTTP,
	log logger.Logger,
) (*HTTPServer, error) {
	return &HTTPServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           handler.Engine(),
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}, nil
}

func (s *HTTPServer) Start(ctx context.Context) error {
	const op = "transport.http.Start"

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		s.log.Infow("starting HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: listen and serve: %w", op, err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		return s.Stop(context.Background())
	})

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	s.log.Infow("shutting down HTTP server", "timeout", s.shutdownTimeout.String())
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("transport.http.Stop: shutdown: %w", err)
	}
	s.log.Infow("HTTP server stopped")
	return nil
}
