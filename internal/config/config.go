package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Bank     BankConfig     `mapstructure:"bank"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Log      LogConfig      `mapstructure:"log"`
}

type BankConfig struct {
	Path string `mapstructure:"path"`
}

type QuizConfig struct {
	DefaultCount int   `mapstructure:"default_count"`
	CountChoices []int `mapstructure:"count_choices"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigPaths are searched for config.yaml; a missing file is not an error.
	ConfigPaths []string
	// EnvFiles are loaded into the environment before reading variables.
	EnvFiles []string
	// Flags, when set, override every other source for the keys they define.
	Flags *pflag.FlagSet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bank.path", "questions.yaml")
	v.SetDefault("quiz.default_count", 5)
	v.SetDefault("quiz.count_choices", []int{5, 10, 20, 30, 40})
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/quiz.log")
	v.SetDefault("log.console", true)
}

// Load merges defaults, config.yaml, .env files, QUIZ_* environment
// variables and command-line flags, in increasing order of precedence.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		// .env files are optional, but a present one must parse
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range opts.ConfigPaths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the variable name the bot has always used
	if err := v.BindEnv("telegram.token", "QUIZ_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, err
	}

	if len(opts.ConfigPaths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no front end can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bank.Path) == "" {
		return errors.New("bank.path is required")
	}
	if c.Quiz.DefaultCount <= 0 {
		return fmt.Errorf("quiz.default_count must be positive, got %d", c.Quiz.DefaultCount)
	}
	for i, choice := range c.Quiz.CountChoices {
		if choice <= 0 {
			return fmt.Errorf("quiz.count_choices[%d] must be positive, got %d", i, choice)
		}
	}
	return nil
}

// RegisterFlags adds the command-line flags Load understands. Flag names match
// config keys so BindPFlags can map them directly.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("bank.path", "questions.yaml", "path to the question bank (YAML or JSON)")
	flags.Int("quiz.default_count", 5, "number of questions preselected on the setup screen")
	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	flags.String("log.file", "logs/quiz.log", "log file path, empty to disable file logging")
}
