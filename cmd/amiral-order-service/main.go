// Package main boots the Amiral order service HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/amiral-order-service/internal/analytics"
	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
	"github.com/fairyhunter13/amiral-order-service/internal/config"
	"github.com/fairyhunter13/amiral-order-service/internal/dispatch"
	"github.com/fairyhunter13/amiral-order-service/internal/events"
	httpapi "github.com/fairyhunter13/amiral-order-service/internal/http"
	"github.com/fairyhunter13/amiral-order-service/internal/obs"
	"github.com/fairyhunter13/amiral-order-service/internal/order"
	"github.com/fairyhunter13/amiral-order-service/internal/pricing"
	"github.com/fairyhunter13/amiral-order-service/internal/queue"
	"github.com/fairyhunter13/amiral-order-service/internal/ratelimit"
	"github.com/fairyhunter13/amiral-order-service/internal/sink"
	"github.com/fairyhunter13/amiral-order-service/internal/validation"
)

func main() {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_error", "error", err)
		os.Exit(1)
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "product_line", cfg.ProductLine)

	line, err := catalog.Line(cfg.ProductLine)
	if err != nil {
		obs.Logger.Error("catalog_error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, backend, rdb := limiterStore(ctx, cfg)
	limiter := ratelimit.New(store, cfg.RateLimitCooldown, cfg.RateLimitRetention)

	dispatcher := dispatch.New(sheetsSink(ctx, cfg, line), telegramSink(cfg, line), cfg.SinkTimeout)

	var (
		subs  []events.Subscriber
		kafka *events.KafkaPublisher
	)
	if len(cfg.KafkaBrokers) > 0 {
		kafka = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		subs = append(subs, kafka)
		obs.Logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	pixel := analytics.NewPixel(analytics.Config{
		PixelID:     cfg.FBPixelID,
		AccessToken: cfg.FBAccessToken,
		GraphURL:    cfg.FBGraphURL,
		Currency:    line.Currency,
		ContentName: line.ProductName,
	}, nil)
	if pixel.Initialize() {
		subs = append(subs, pixel)
	}

	q := queue.New(128)
	mgr := queue.NewManager(cfg, q, events.Fanout(subs...))
	mgr.Start(ctx)

	svc := order.NewService(validation.New(line), pricing.New(line), limiter, dispatcher, mgr)
	app := httpapi.NewApp(cfg, httpapi.Deps{
		Line:           line,
		Orders:         svc,
		Dispatcher:     dispatcher,
		Manager:        mgr,
		Pixel:          pixel,
		LimiterBackend: backend,
		KafkaEnabled:   kafka != nil,
	})
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// sinks run up to SinkTimeout each, concurrently
		WriteTimeout: cfg.SinkTimeout + 20*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()

	// in-flight orders finish before the event queue is drained
	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	mgr.CloseIntake()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", mgr.BacklogSize(), "worker_count", mgr.WorkerCount())
	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}
	mgr.Stop()

	if kafka != nil {
		if err := kafka.Close(); err != nil {
			obs.Logger.Warn("kafka_close_error", "error", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	obs.Logger.Info("service_stopped")
}

// limiterStore prefers Redis when configured and falls back to process
// memory when it is absent or unreachable.
func limiterStore(ctx context.Context, cfg config.Config) (ratelimit.Store, string, *redis.Client) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemoryStore(), "memory", nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rdb, err := ratelimit.DialRedis(dialCtx, cfg.RedisURL)
	if err != nil {
		obs.Logger.Warn("redis_unavailable", "error", err)
		return ratelimit.NewMemoryStore(), "memory", nil
	}
	return ratelimit.NewRedisStore(rdb, "ratelimit:"), "redis", rdb
}

// sheetsSink picks the spreadsheet backend: the Sheets API, a local
// workbook, or a remote append function, in that order.
func sheetsSink(ctx context.Context, cfg config.Config, line catalog.ProductLine) sink.Sink {
	switch {
	case cfg.SpreadsheetID != "" && cfg.GoogleServiceAccountKeyJSON != "":
		creds, err := sink.CredentialsOption(cfg.GoogleServiceAccountKeyJSON)
		if err == nil {
			var gs *sink.GoogleSheets
			gs, err = sink.NewGoogleSheets(ctx, cfg.SpreadsheetID, cfg.SheetsRange, creds)
			if err == nil {
				obs.Logger.Info("sheets_backend", "backend", "google")
				return sink.NewSheets(gs, line)
			}
		}
		obs.Logger.Error("sheets_init_error", "error", err)
	case cfg.SheetsXLSXPath != "":
		obs.Logger.Info("sheets_backend", "backend", "xlsx", "path", cfg.SheetsXLSXPath)
		return sink.NewSheets(sink.NewXLSXFile(cfg.SheetsXLSXPath, cfg.SheetsRange), line)
	case cfg.SheetsFunctionURL != "":
		obs.Logger.Info("sheets_backend", "backend", "remote")
		return sink.NewRemoteSheets(cfg.SheetsFunctionURL, nil)
	}
	obs.Logger.Warn("sheets_unconfigured")
	return sink.NewSheets(nil, line)
}

func telegramSink(cfg config.Config, line catalog.ProductLine) sink.Sink {
	if cfg.TelegramBotToken == "" && cfg.TelegramFunctionURL != "" {
		return sink.NewRemoteTelegram(cfg.TelegramFunctionURL, nil)
	}
	t := sink.NewTelegram(sink.TelegramConfig{
		APIURL:   cfg.TelegramAPIURL,
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
	}, line, nil)
	if !t.Configured() {
		obs.Logger.Warn("telegram_unconfigured")
	}
	return t
}
