package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/database"
	"github.com/icodeforyou/elpris-go/logging"
	"github.com/icodeforyou/elpris-go/mqttpub"
	"github.com/icodeforyou/elpris-go/source"
	"github.com/icodeforyou/elpris-go/task"
	"github.com/icodeforyou/elpris-go/www"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Default().Error("elpris stopped with error", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
	slog.Default().Info("elpris stopped")
}

func run(ctx context.Context, configPath string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env file: %w", err)
	}

	cnfg, err := config.Load(configPath, nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	area, err := cnfg.EnergyPrice.GetArea()
	if err != nil {
		return fmt.Errorf("energy_price.area: %w", err)
	}
	if cnfg.Database.Path == "" {
		return errors.New("database.path must be assigned")
	}

	console := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.SetDefault(slog.New(console))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	logger := newLogger(cnfg.Logging, console, db)
	slog.SetDefault(logger)
	db.SetLogger(logger.With("module", "database"))

	providers, err := source.Providers(cnfg.EnergyPrice.GetProviders())
	if err != nil {
		return err
	}
	src := source.New(logger.With("module", "source"), db, providers)

	var listeners []task.PriceListener
	switch {
	case !cnfg.Mqtt.Enabled():
		logger.Info("no MQTT host configured, skipping MQTT publishing")
	case isDevMode():
		logger.Info("dev mode, skipping MQTT connection")
	default:
		pub := mqttpub.New(cnfg.Mqtt)
		if err := pub.Connect(); err != nil {
			return fmt.Errorf("connect to MQTT broker: %w", err)
		}
		defer pub.Disconnect()
		listeners = append(listeners, pub)
	}

	tasks := task.NewTasks(db, src, cnfg, listeners...)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	server, err := www.NewServer(cnfg, src, db, tasks.PriceTask)
	if err != nil {
		return fmt.Errorf("create web server: %w", err)
	}

	logger.Info("elpris started", slog.String("area", area.String()), slog.String("version", Version))
	server.Run(ctx)
	return nil
}

// newLogger fans out to the console, the log table and, when configured, a
// rotated log file. Database writes are logged back into the database.
func newLogger(cnfg config.AppConfigLogging, console slog.Handler, db *database.Database) *slog.Logger {
	handlers := []slog.Handler{
		console,
		logging.NewSQLiteHandler(db, cnfg.GetDbLevel(), cnfg.GetDbAttrsFormat()),
	}
	if cnfg.File != nil && *cnfg.File != "" {
		handlers = append(handlers, logging.NewFileHandler(
			*cnfg.File,
			cnfg.GetFileMaxSize(),
			cnfg.GetFileMaxBackups(),
			cnfg.GetConsoleLevel()))
	}
	return slog.New(logging.NewMultiHandler(handlers...))
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}
