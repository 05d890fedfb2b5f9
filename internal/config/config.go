// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fairyhunter13/amiral-order-service/internal/catalog"
)

// Config holds configuration knobs for the HTTP server, workers, sinks and
// side channels.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	ProductLine     string

	InitialWorkerCount      int
	WorkerMin               int
	WorkerMax               int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	QueueHighWatermark      int

	SinkTimeout        time.Duration
	RateLimitCooldown  time.Duration
	RateLimitRetention time.Duration
	RedisURL           string

	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string

	GoogleServiceAccountKeyJSON string
	SpreadsheetID               string
	SheetsRange                 string
	SheetsXLSXPath              string

	SheetsFunctionURL   string
	TelegramFunctionURL string

	KafkaBrokers []string
	KafkaTopic   string

	FBPixelID     string
	FBAccessToken string
	FBGraphURL    string

	AdminAPIKey     string
	CORSAllowOrigin string
}

var stringDefaults = map[string]string{
	"HTTP_ADDR":         ":8080",
	"LOG_LEVEL":         "info",
	"PRODUCT_LINE":      "cupping",
	"TELEGRAM_API_URL":  "https://api.telegram.org",
	"SHEETS_RANGE":      "الطلبات!A:P",
	"KAFKA_TOPIC":       "orders.events",
	"FB_GRAPH_URL":      "https://graph.facebook.com/v18.0",
	"CORS_ALLOW_ORIGIN": "*",
}

// every key Load reads; viper only consults the environment for known keys
var keys = []string{
	"HTTP_ADDR", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "PRODUCT_LINE",
	"WORKER_MIN", "WORKER_MAX", "WORKER_COUNT", "SCALE_INTERVAL_MS",
	"SCALE_UP_BACKLOG_PER_WORKER", "SCALE_DOWN_IDLE_TICKS", "QUEUE_HIGH_WATERMARK",
	"SINK_TIMEOUT_MS", "RATE_LIMIT_COOLDOWN_MIN", "RATE_LIMIT_RETENTION_HOURS", "REDIS_URL",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "TELEGRAM_API_URL",
	"GOOGLE_SERVICE_ACCOUNT_KEY_JSON", "SPREADSHEET_ID", "SHEETS_RANGE", "SHEETS_XLSX_PATH",
	"SHEETS_FUNCTION_URL", "TELEGRAM_FUNCTION_URL",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
	"FB_PIXEL_ID", "FB_ACCESS_TOKEN", "FB_GRAPH_URL",
	"ADMIN_API_KEY", "CORS_ALLOW_ORIGIN",
}

// Load collects configuration from the environment and an optional
// config/config.yaml, environment first, with defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	for k, def := range stringDefaults {
		v.SetDefault(k, def)
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	minWorkers := atoi(v, "WORKER_MIN", 3)
	maxWorkers := atoi(v, "WORKER_MAX", 8)
	if maxWorkers < minWorkers {
		maxWorkers = minWorkers
	}
	initialWorkers := atoi(v, "WORKER_COUNT", minWorkers)

	c := Config{
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		ShutdownTimeout: time.Duration(atoi(v, "SHUTDOWN_TIMEOUT", 15)) * time.Second,
		LogLevel:        v.GetString("LOG_LEVEL"),
		ProductLine:     strings.ToLower(strings.TrimSpace(v.GetString("PRODUCT_LINE"))),

		InitialWorkerCount:      initialWorkers,
		WorkerMin:               minWorkers,
		WorkerMax:               maxWorkers,
		ScaleInterval:           time.Duration(atoi(v, "SCALE_INTERVAL_MS", 500)) * time.Millisecond,
		ScaleUpBacklogPerWorker: atoi(v, "SCALE_UP_BACKLOG_PER_WORKER", 100),
		ScaleDownIdleTicks:      atoi(v, "SCALE_DOWN_IDLE_TICKS", 6),
		QueueHighWatermark:      atoi(v, "QUEUE_HIGH_WATERMARK", 5000),

		SinkTimeout:        time.Duration(atoi(v, "SINK_TIMEOUT_MS", 10000)) * time.Millisecond,
		RateLimitCooldown:  time.Duration(atoi(v, "RATE_LIMIT_COOLDOWN_MIN", 60)) * time.Minute,
		RateLimitRetention: time.Duration(atoi(v, "RATE_LIMIT_RETENTION_HOURS", 24)) * time.Hour,
		RedisURL:           v.GetString("REDIS_URL"),

		TelegramBotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   v.GetString("TELEGRAM_CHAT_ID"),
		TelegramAPIURL:   v.GetString("TELEGRAM_API_URL"),

		GoogleServiceAccountKeyJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_KEY_JSON"),
		SpreadsheetID:               v.GetString("SPREADSHEET_ID"),
		SheetsRange:                 v.GetString("SHEETS_RANGE"),
		SheetsXLSXPath:              v.GetString("SHEETS_XLSX_PATH"),

		SheetsFunctionURL:   v.GetString("SHEETS_FUNCTION_URL"),
		TelegramFunctionURL: v.GetString("TELEGRAM_FUNCTION_URL"),

		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		FBPixelID:     v.GetString("FB_PIXEL_ID"),
		FBAccessToken: v.GetString("FB_ACCESS_TOKEN"),
		FBGraphURL:    v.GetString("FB_GRAPH_URL"),

		AdminAPIKey:     v.GetString("ADMIN_API_KEY"),
		CORSAllowOrigin: v.GetString("CORS_ALLOW_ORIGIN"),
	}
	if _, err := catalog.Line(c.ProductLine); err != nil {
		return Config{}, fmt.Errorf("PRODUCT_LINE: %w", err)
	}
	return c, nil
}

// atoi reads an integer, falling back to def when unset or malformed.
func atoi(v *viper.Viper, key string, def int) int {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
