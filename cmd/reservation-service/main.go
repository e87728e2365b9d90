package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/app"
	"github.com/vladislavdragonenkov/hotelres/internal/version"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(level string) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(log.InfoLevel)
		return err
	}
	log.SetLevel(parsed)
	return nil
}

// readConfig читает .env (если есть) и переменные окружения HOTELRES_*.
// Значения из окружения имеют приоритет над .env.
func readConfig(lookup app.EnvLookup) (app.Config, []string) {
	var warnings []string
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		warnings = append(warnings, "failed to load .env: "+err.Error())
	}
	cfg, envWarnings := app.LoadConfig(lookup)
	return cfg, append(warnings, envWarnings...)
}

func main() {
	cfg, warnings := readConfig(os.LookupEnv)
	if err := setupLogger(cfg.LogLevel); err != nil {
		log.WithError(err).Warn("unknown log level, using info")
	}
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
		"version":      version.String(),
	}).Info("запускаем ReservationService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("ReservationService остановлен")
}
