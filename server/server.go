// Package server serves retirement projections over HTTP.
package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/toshan-luktuke/retire-early"
	"github.com/toshan-luktuke/retire-early/insee"
)

// Server answers simulation requests.
type Server struct {
	cfg    Config
	params retire.AssetParams
	logger *logrus.Logger
	router *mux.Router

	// Insee downloads the price index refreshing the default inflation.
	Insee *insee.Client
	// Source returns the random source of a simulation. Defaults to a randomly seeded PCG.
	Source func() rand.Source

	mu        sync.RWMutex
	inflation float64
}

// New returns a server simulating with params, or the default ones if nil.
func New(cfg Config, params retire.AssetParams, logger *logrus.Logger) *Server {
	if params == nil {
		params = retire.DefaultAssetParams()
	}
	s := &Server{
		cfg:       cfg,
		params:    params,
		logger:    logger,
		router:    mux.NewRouter(),
		Insee:     insee.NewClient(),
		inflation: cfg.Inflation,
	}
	s.Insee.Logger = logger
	s.router.Use(RequestIDMiddleware(), LoggingMiddleware(logger))
	s.RegisterRoutes(s.router)
	return s
}

// RegisterRoutes registers the API routes on router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/submit-form", s.Simulate).Methods(http.MethodPost)
	router.HandleFunc("/simulate", s.Simulate).Methods(http.MethodPost)
	router.HandleFunc("/chart", s.Chart).Methods(http.MethodPost)
	router.HandleFunc("/report", s.Report).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Inflation returns the rate used by requests without one.
func (s *Server) Inflation() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflation
}

// RefreshInflation sets the default inflation to the latest year-over-year
// change of the configured INSEE series.
func (s *Server) RefreshInflation(ctx context.Context) error {
	rate, at, err := s.Insee.Inflation(ctx, s.cfg.InseeSeries, time.Now())
	if err != nil {
		return err
	}
	if rate < 0 {
		// deflation is not a valid simulation setting.
		rate = 0
	}
	s.mu.Lock()
	s.inflation = rate
	s.mu.Unlock()
	s.logger.WithFields(logrus.Fields{
		"series":    s.cfg.InseeSeries,
		"inflation": rate,
		"measured":  at.Format(time.DateOnly),
	}).Info("default inflation refreshed")
	return nil
}

// scheduleRefresh refreshes the inflation now and then on schedule. The
// returned cron must be stopped.
func (s *Server) scheduleRefresh(ctx context.Context) (*cron.Cron, error) {
	refresh := func() {
		if err := s.RefreshInflation(ctx); err != nil {
			s.logger.WithError(err).Warn("cannot refresh inflation, keeping the previous rate")
		}
	}
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.InflationSchedule, refresh); err != nil {
		return nil, err
	}
	refresh()
	c.Start()
	return c, nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.InseeSeries != "" {
		c, err := s.scheduleRefresh(ctx)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Addr).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
