package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bot-variantes/config"
	"bot-variantes/internal/bot"
	"bot-variantes/internal/database"
	"bot-variantes/internal/logger"
	"bot-variantes/internal/monitor"
	"bot-variantes/internal/notifier"
	"bot-variantes/internal/scraper"
	"bot-variantes/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	envErr := godotenv.Load()
	logger.Init()
	log := logger.Component("main")
	if envErr != nil {
		log.Info().Msg("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao carregar configurações")
	}

	// Inicializar banco de dados
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar banco de dados")
	}
	defer db.Close()
	db.SetRetention(database.Retention{MaxRecords: cfg.NotificationHistory, TTL: cfg.NotificationTTL})

	// Inicializar bot do Telegram
	telegramBot, err := bot.Init(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar bot do Telegram")
	}

	registry := scraper.NewRegistry()
	fetcher := scraper.NewHTTPFetcher(scraper.FetcherOptions{
		Timeout:   cfg.FetchTimeout,
		Interval:  cfg.RequestInterval,
		UserAgent: cfg.UserAgent,
	})

	opts := monitor.Options{Interval: cfg.CheckInterval, Workers: cfg.Workers}
	if cfg.LiveBrowser {
		live, err := scraper.NewLiveExtractor(cfg.UserAgent, cfg.FetchTimeout)
		if err != nil {
			log.Warn().Err(err).Msg("Navegador indisponível, novos itens usarão o fetcher HTTP")
		} else {
			defer live.Close()
			opts.Seeder = live
		}
	}

	sender := bot.NewSender(telegramBot, cfg.TelegramChatID, cfg.PublicBaseURL)
	monitorInstance := monitor.New(db, fetcher, registry, notifier.New(sender), opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Iniciar monitoramento em background
	go monitorInstance.Start(ctx)

	var httpServer *server.Server
	if cfg.HTTPAddr != "" {
		httpServer = server.New(cfg.HTTPAddr, monitorInstance)
		go func() {
			if err := httpServer.Start(); err != nil {
				log.Error().Err(err).Msg("Erro no servidor HTTP")
			}
		}()
	}

	// Configurar comandos do bot
	go bot.New(telegramBot, monitorInstance, cfg.TelegramChatID).Listen(ctx, telegramBot)

	// Aguardar sinal de interrupção
	<-ctx.Done()
	log.Info().Msg("Encerrando bot...")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Erro ao encerrar servidor HTTP")
		}
	}
}
