package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contém as configurações da aplicação
type Config struct {
	TelegramBotToken     string
	TelegramChatID       int64
	CheckIntervalMinutes int
	CheckInterval        time.Duration
	DatabasePath         string
	HTTPAddr             string
	PublicBaseURL        string
	Workers              int
	RequestInterval      time.Duration
	FetchTimeout         time.Duration
	NotificationHistory  int
	NotificationTTL      time.Duration
	LiveBrowser          bool
	UserAgent            string
}

// DefaultUserAgent é enviado nas requisições às lojas
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load carrega as configurações das variáveis de ambiente
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado")
	}

	cfg := &Config{
		TelegramBotToken:     token,
		CheckIntervalMinutes: 60,
		DatabasePath:         "./variants.db",
		HTTPAddr:             ":8080",
		Workers:              1,
		RequestInterval:      2 * time.Second,
		FetchTimeout:         30 * time.Second,
		NotificationHistory:  500,
		NotificationTTL:      720 * time.Hour,
		UserAgent:            DefaultUserAgent,
	}

	// Sem chat ID não há para onde enviar os alertas
	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID não configurado")
	}
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID inválido: %w", err)
	}
	cfg.TelegramChatID = chatID

	if path := os.Getenv("DATABASE_PATH"); path != "" {
		cfg.DatabasePath = path
	}

	// HTTP_ADDR vazio desativa o servidor auxiliar
	if addr, ok := os.LookupEnv("HTTP_ADDR"); ok {
		cfg.HTTPAddr = addr
	}
	cfg.PublicBaseURL = strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/")

	cfg.CheckIntervalMinutes = positiveInt("CHECK_INTERVAL_MINUTES", cfg.CheckIntervalMinutes)
	cfg.CheckInterval = time.Duration(cfg.CheckIntervalMinutes) * time.Minute

	cfg.Workers = positiveInt("CHECK_WORKERS", cfg.Workers)
	cfg.RequestInterval = time.Duration(positiveInt("REQUEST_INTERVAL_SECONDS", 2)) * time.Second
	cfg.FetchTimeout = time.Duration(positiveInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.NotificationHistory = positiveInt("NOTIFICATION_HISTORY", cfg.NotificationHistory)
	cfg.NotificationTTL = time.Duration(positiveInt("NOTIFICATION_TTL_HOURS", 720)) * time.Hour

	if live, err := strconv.ParseBool(os.Getenv("LIVE_BROWSER")); err == nil {
		cfg.LiveBrowser = live
	}
	if ua := os.Getenv("USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}

	return cfg, nil
}

// positiveInt lê um inteiro positivo, mantendo o padrão se ausente ou inválido
func positiveInt(key string, def int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}
