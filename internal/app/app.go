package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/hotelres/internal/health"
	"github.com/vladislavdragonenkov/hotelres/internal/service/dispatch"
	"github.com/vladislavdragonenkov/hotelres/internal/service/httpapi"
	"github.com/vladislavdragonenkov/hotelres/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает REST API и сервер метрик и блокируется до отмены ctx
// или ошибки API-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.closeFn(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	stopDispatch := startDispatcher(deps.dispatcher, logger)
	defer stopDispatch()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	api := httpapi.NewServer(deps.engine, logger.WithField("layer", "http"))
	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		return err
	}
	api.Listener = lis

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", lis.Addr())
		errCh <- api.Start("")
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем REST API")
		shutdownEcho(api, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startDispatcher запускает фоновую доставку событий. Возвращённая функция
// останавливает её и ждёт, пока очередь будет отправлена.
func startDispatcher(d *dispatch.Dispatcher, logger *log.Entry) func() {
	if d == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)
	logger.Info("доставка событий бронирований запущена")
	return func() {
		cancel()
		select {
		case <-d.Done():
		case <-time.After(shutdownTimeout):
			logger.Warn("event dispatcher did not stop in time")
		}
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}

func shutdownEcho(e *echo.Echo, logger *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("graceful stop превысил таймаут, принудительно останавливаем")
		_ = e.Close()
	}
}
