package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"readwiser/internal/config"
	"readwiser/internal/domain/quote"
	"readwiser/internal/domain/user"
	"readwiser/internal/infrastructure/crontab"
	"readwiser/internal/infrastructure/database"
	"readwiser/internal/infrastructure/database/repository/quoterepo"
	"readwiser/internal/infrastructure/database/repository/userrepo"
	"readwiser/internal/infrastructure/logger"
	"readwiser/internal/infrastructure/metadata"
	"readwiser/internal/infrastructure/telegram"
	"readwiser/internal/interfaces/bot"
	"readwiser/internal/interfaces/httpserver"
)

type Application struct {
	bot        *bot.Bot
	crontab    *crontab.Crontab
	httpServer *httpserver.HttpServer
}

func (application *Application) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var eg errgroup.Group
	eg.Go(func() error {
		err := application.bot.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.httpServer.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	return eg.Wait()
}

func main() {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log, err = logger.Configure(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fallback := logger.GetLogger()
		fallback.Fatal().Err(err).Msg("configure logging")
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	quoteService := quote.NewService(quoterepo.NewQuoteGormRepository(db), log)
	userService := user.NewService(userrepo.NewUserGormRepository(db), log)
	fetcher := metadata.NewClient(cfg.FetchTimeout, cfg.FetchDialTimeout, log)
	transport := telegram.NewClient(cfg.TelegramBotToken, "", time.Duration(cfg.PollTimeout+10)*time.Second)

	chatBot := bot.New(cfg, transport, fetcher, quoteService, userService, log)

	application := &Application{
		bot:        chatBot,
		crontab:    crontab.NewCrontab(cfg, chatBot),
		httpServer: httpserver.New(cfg, db, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("application stopped")
	}
	log.Info().Msg("shutdown complete")
}
