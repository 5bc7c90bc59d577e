package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/PoluyanbIch/GoQuiz/internal/config"
	"github.com/PoluyanbIch/GoQuiz/internal/logger"
	"github.com/PoluyanbIch/GoQuiz/internal/service"
	"github.com/PoluyanbIch/GoQuiz/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "quiz: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("quiz", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	noColor := flags.Bool("no-color", false, "disable colors")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(config.Options{ConfigPaths: []string{"."}, Flags: flags})
	if err != nil {
		return err
	}

	// the terminal belongs to the UI; logs only go to the file
	cfg.Log.Console = false
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the quiz needs an interactive terminal")
	}

	bank := service.LoadQuizQuestions(cfg.Bank.Path, log)
	engine, err := service.NewEngine(bank, service.WithLogger(log))
	if err != nil {
		log.Error("invalid question bank", zap.String("path", cfg.Bank.Path), zap.Error(err))
		return err
	}

	model := tui.NewModel(engine, tui.Options{
		CountChoices: cfg.Quiz.CountChoices,
		DefaultCount: cfg.Quiz.DefaultCount,
		NoColor:      *noColor,
		Logger:       log,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run quiz ui: %w", err)
	}
	return nil
}
