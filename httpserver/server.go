// Package httpserver exposes the deed registry over HTTP.
//
// The server wires the asset registry, notary registry and escrow engine
// behind a chi router, with liveness, readiness and drain endpoints for
// operation behind a load balancer.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/atomic"

	"github.com/deedprotocol/escrow-backend/common"
	"github.com/deedprotocol/escrow-backend/metrics"
)

type HTTPServerConfig struct {
	ListenAddr  string
	MetricsAddr string
	EnablePprof bool
	Log         *slog.Logger

	DrainDuration            time.Duration
	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}

type Server struct {
	cfg     *HTTPServerConfig
	isReady atomic.Bool
	log     *slog.Logger

	srv        *http.Server
	metricsSrv *metrics.MetricsServer
	handler    *Handler
}

func New(cfg *HTTPServerConfig, handler *Handler) (srv *Server, err error) {
	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	if err != nil {
		return nil, err
	}

	srv = &Server{
		cfg:        cfg,
		log:        cfg.Log,
		srv:        nil,
		metricsSrv: metricsSrv,
		handler:    handler,
	}
	srv.isReady.Store(true)

	srv.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.getRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return srv, nil
}

func (srv *Server) getRouter() http.Handler {
	mux := chi.NewRouter()

	// Asset registry
	mux.With(srv.httpLogger).Post("/api/v1/assets", srv.handler.HandleRegisterAsset)
	mux.With(srv.httpLogger).Put("/api/v1/assets/{asset_id}", srv.handler.HandleUpdateDetails)
	mux.With(srv.httpLogger).Post("/api/v1/assets/{asset_id}/list", srv.handler.HandleListForSale)
	mux.With(srv.httpLogger).Post("/api/v1/assets/{asset_id}/delist", srv.handler.HandleDelist)
	mux.With(srv.httpLogger).Get("/api/v1/assets/{asset_id}", srv.handler.HandleGetAsset)
	mux.With(srv.httpLogger).Get("/api/v1/assets/{asset_id}/owner/{identity}", srv.handler.HandleIsOwner)

	// Escrowed transfers
	mux.With(srv.httpLogger).Post("/api/v1/escrows/{asset_id}", srv.handler.HandleInitiatePurchase)
	mux.With(srv.httpLogger).Post("/api/v1/escrows/{asset_id}/approve/seller", srv.handler.HandleApproveAsSeller)
	mux.With(srv.httpLogger).Post("/api/v1/escrows/{asset_id}/approve/notary", srv.handler.HandleApproveAsNotary)
	mux.With(srv.httpLogger).Post("/api/v1/escrows/{asset_id}/complete", srv.handler.HandleComplete)
	mux.With(srv.httpLogger).Post("/api/v1/escrows/{asset_id}/cancel", srv.handler.HandleCancel)
	mux.With(srv.httpLogger).Post("/api/v1/escrows/{asset_id}/refund", srv.handler.HandleRefundExpired)
	mux.With(srv.httpLogger).Get("/api/v1/escrows/{asset_id}", srv.handler.HandleGetEscrow)

	// Administration
	mux.With(srv.httpLogger).Post("/api/admin/notaries", srv.handler.HandleAddNotary)
	mux.With(srv.httpLogger).Delete("/api/admin/notaries/{identity}", srv.handler.HandleDeactivateNotary)
	mux.With(srv.httpLogger).Get("/api/admin/notaries/{identity}", srv.handler.HandleGetNotary)
	mux.With(srv.httpLogger).Post("/api/admin/transfer-ownership", srv.handler.HandleTransferOwnership)

	// Health and diagnostic endpoints
	mux.With(srv.httpLogger).Get("/livez", srv.handleLivenessCheck)
	mux.With(srv.httpLogger).Get("/readyz", srv.handleReadinessCheck)
	mux.With(srv.httpLogger).Get("/drain", srv.handleDrain)
	mux.With(srv.httpLogger).Get("/undrain", srv.handleUndrain)

	if srv.cfg.EnablePprof {
		srv.log.Info("pprof API enabled")
		mux.Mount("/debug", middleware.Profiler())
	}
	return mux
}

// Router exposes the configured handler for serving through an external
// listener, such as httptest.
func (srv *Server) Router() http.Handler {
	return srv.srv.Handler
}

func (srv *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(srv.log, next)
}

func (srv *Server) handleLivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"alive"}`))
}

func (srv *Server) handleReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (srv *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if !srv.isReady.Swap(false) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"already draining"}`))
		return
	}

	srv.log.Info("Server marked as not ready")

	go func() {
		// Wait for the drain duration to allow load balancers to detect the change
		time.Sleep(srv.cfg.DrainDuration)
		srv.log.Info("Drain period completed")
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"draining"}`))
}

func (srv *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if srv.isReady.Swap(true) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"already ready"}`))
		return
	}

	srv.log.Info("Server marked as ready")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (srv *Server) RunInBackground() {
	// metrics
	if srv.cfg.MetricsAddr != "" {
		go func() {
			srv.log.With("metricsAddress", srv.cfg.MetricsAddr).Info("Starting metrics server")
			err := srv.metricsSrv.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				srv.log.Error("Metrics server failed", "err", err)
			}
		}()
	}

	// api
	go func() {
		srv.log.Info("Starting HTTP server", "listenAddress", srv.cfg.ListenAddr)
		if err := srv.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.log.Error("HTTP server failed", "err", err)
		}
	}()
}

func (srv *Server) Shutdown() {
	// api
	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := srv.srv.Shutdown(ctx); err != nil {
		srv.log.Error("Graceful HTTP server shutdown failed", "err", err)
	} else {
		srv.log.Info("HTTP server gracefully stopped")
	}

	// metrics
	if len(srv.cfg.MetricsAddr) != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.GracefulShutdownDuration)
		defer cancel()

		if err := srv.metricsSrv.Shutdown(ctx); err != nil {
			srv.log.Error("Graceful metrics server shutdown failed", "err", err)
		} else {
			srv.log.Info("Metrics server gracefully stopped")
		}
	}
}
