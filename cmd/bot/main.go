package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/PoluyanbIch/GoQuiz/internal/config"
	"github.com/PoluyanbIch/GoQuiz/internal/logger"
	"github.com/PoluyanbIch/GoQuiz/internal/service"
	"github.com/PoluyanbIch/GoQuiz/internal/telegram"
)

var errNoToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("bot", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Options{ConfigPaths: []string{"."}, Flags: flags})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Telegram.Token == "" {
		log.Error("bot token is missing", zap.Error(errNoToken))
		return errNoToken
	}

	bank := service.LoadQuizQuestions(cfg.Bank.Path, log)
	bot, err := telegram.NewBot(cfg.Telegram.Token, bank, telegram.Options{
		CountChoices: cfg.Quiz.CountChoices,
		DefaultCount: cfg.Quiz.DefaultCount,
		Debug:        cfg.Telegram.Debug,
	}, log)
	if err != nil {
		log.Error("start bot", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("bot is starting")
	bot.Start(ctx)
	log.Info("bot stopped")
	return nil
}
