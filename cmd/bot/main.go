package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/emigresto/telegram-resto-bot/internal/app"
	"github.com/emigresto/telegram-resto-bot/internal/bot/handlers"
	"github.com/emigresto/telegram-resto-bot/internal/config"
	"github.com/emigresto/telegram-resto-bot/internal/jobs"
	"github.com/emigresto/telegram-resto-bot/internal/logging"
	"github.com/emigresto/telegram-resto-bot/internal/observability"
	"github.com/emigresto/telegram-resto-bot/internal/session"
)

const release = "restobot@dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("pas de fichier .env, on lit l'environnement")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.Init(cfg.SentryDSN, cfg.Env, release)
	if err != nil {
		lg.Sugar.Warnw("sentry init", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, err := session.Open(cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("base de sessions", "err", err)
	}
	defer func() { _ = sessions.Close() }()

	if err := session.Migrate(sessions.DB()); err != nil {
		lg.Sugar.Fatalw("migrations", "err", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		lg.Sugar.Fatalw("démarrage du bot", "err", err)
	}
	lg.Base.Info("bot démarré", zap.String("username", bot.Self.UserName),
		zap.String("api", cfg.APIBaseURL))

	app.StartHTTP(ctx, cfg.HTTPAddr, sessions.DB())

	runner := jobs.NewRunner(ctx, lg.Base)
	runner.Every(12*time.Hour, "session_cleanup",
		jobs.SessionCleanup(sessions, 30*24*time.Hour, lg.Base))

	env := &handlers.Env{
		Bot:      bot,
		Sessions: sessions,
		Cfg:      cfg,
		Log:      lg.Base,
	}
	dispatcher := app.NewDispatcher(env)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			lg.Base.Info("arrêt demandé")
			bot.StopReceivingUpdates()
			return
		case update := <-updates:
			dispatcher.Dispatch(ctx, update)
		}
	}
}
