package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/logging"
	"github.com/icodeforyou/elpris-go/types"
)

const broadcastInterval = 10 * time.Second

// PriceSource is where the server gets its prices, normally a cached
// *source.Source.
type PriceSource interface {
	Day(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error)
	TwoDays(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error)
}

type LogReader interface {
	GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]logging.LogEntry, error)
}

type Server struct {
	logger  *slog.Logger
	config  *config.AppConfig
	src     PriceSource
	hub     *Hub
	tm      *TemplateManager
	handler http.Handler
}

//go:embed static
var embeddedStaticDir embed.FS

// NewServer sets up the routes. logs may be nil, the log page is then not
// served. refresh is run on POST /api/refresh.
func NewServer(cnfg *config.AppConfig, src PriceSource, logs LogReader, refresh func()) (*Server, error) {
	logger := slog.Default().With("module", "www")
	tm, err := NewTemplateManager(logger, cnfg.Api.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization: %w", err)
	}

	s := &Server{
		logger: logger,
		config: cnfg,
		src:    src,
		hub:    NewHub(logger.With(slog.String("component", "hub"))),
		tm:     tm,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFilesHandler(cnfg.Api.WwwDir)))

	mux.Handle("GET /{$}", NewIndexHandler(
		logger.With(slog.String("handler", "index")),
		cnfg,
		src,
		tm))

	mux.Handle("GET /api/analysis", NewAnalysisHandler(
		logger.With(slog.String("handler", "analysis")),
		cnfg,
		src))

	mux.Handle("POST /api/refresh", NewRefreshHandler(
		logger.With(slog.String("handler", "refresh")),
		refresh))

	if logs != nil {
		mux.Handle("GET /log", NewLogHandler(
			logger.With(slog.String("handler", "log")),
			logs,
			tm))
	}

	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		if !s.hub.register(client) {
			client.conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	})

	s.handler = requestLogger(logger, mux)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled and pushes the current price to all
// websocket clients.
func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", slog.Int("port", int(s.config.Api.Port)))
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Api.Address, s.config.Api.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	go s.hub.Run(ctx)

	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	// Keeping state to avoid spamming logs
	currentPriceErrorState := false

	for {
		select {
		case err := <-srvErrors:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("server error", slog.Any("error", err))
			}
			return

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			if s.hub.Clients() == 0 {
				continue
			}

			area, err := s.config.EnergyPrice.GetArea()
			if err != nil {
				continue
			}

			data, err := currentPrice(ctx, s.src, area, time.Now())
			if err != nil {
				if !currentPriceErrorState {
					currentPriceErrorState = true
					s.logger.Warn("failed to get current price", slog.Any("error", err))
				}
			} else {
				currentPriceErrorState = false
			}

			buf, err := s.tm.Execute("current_price.html", data)
			if err != nil {
				s.logger.Error("template execution failed", slog.Any("error", err))
				continue
			}

			select {
			case s.hub.Broadcast <- buf.Bytes():
			case <-ctx.Done():
			}
		}
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
