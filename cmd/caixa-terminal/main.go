package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/app"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to YAML config (fallback: CAIXA_CONFIG)")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CAIXA_CONFIG")
	}

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		log.WithError(err).Fatal("некорректная конфигурация")
	}
	app.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr": cfg.App.HTTPAddr,
		"upstream":  cfg.Upstream.BaseURL,
	}).Info("запускаем терминал кассы")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("терминал кассы остановлен")
}
