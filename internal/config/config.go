package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sheet-quiz/internal/logging"
	"sheet-quiz/internal/quiz"
	"sheet-quiz/internal/sheet"
)

const envPrefix = "SHEET_QUIZ"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sheet    SheetConfig    `mapstructure:"sheet"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr               string        `mapstructure:"addr"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type SheetConfig struct {
	URL     string        `mapstructure:"url"`
	Format  string        `mapstructure:"format"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type QuizConfig struct {
	DurationMinutes int    `mapstructure:"duration_minutes"`
	QuestionCount   int    `mapstructure:"question_count"`
	ZeroCountPolicy string `mapstructure:"zero_count_policy"`
	MinOptions      int    `mapstructure:"min_options"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit_per_minute", 120)

	v.SetDefault("database.path", "quiz.db")

	v.SetDefault("sheet.url", sheet.DefaultCSVURL)
	v.SetDefault("sheet.format", sheet.FormatCSV)
	v.SetDefault("sheet.timeout", 10*time.Second)

	v.SetDefault("quiz.duration_minutes", 10)
	v.SetDefault("quiz.question_count", 10)
	v.SetDefault("quiz.zero_count_policy", "all")
	v.SetDefault("quiz.min_options", quiz.DefaultMinimum)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", "console")
}

// Load reads config.yaml from dir when present, then environment variables
// prefixed SHEET_QUIZ_ (SHEET_QUIZ_SERVER_ADDR and so on). ADDR is honored for
// the listen address.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.addr", envPrefix+"_SERVER_ADDR", "ADDR")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, item := range origins {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		problems = append(problems, "server.read_header_timeout must be positive")
	}
	if c.Server.RateLimitPerMinute < 0 {
		problems = append(problems, "server.rate_limit_per_minute cannot be negative")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		problems = append(problems, "database.path is required")
	}
	if !sheet.ValidFormat(c.Sheet.Format) {
		problems = append(problems, fmt.Sprintf("sheet.format %q must be csv or pubhtml", c.Sheet.Format))
	}
	if c.Sheet.Timeout <= 0 {
		problems = append(problems, "sheet.timeout must be positive")
	}
	if err := c.Quiz.Settings().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := quiz.ParseZeroCountPolicy(c.Quiz.ZeroCountPolicy); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Quiz.MinOptions < quiz.DefaultMinimum || c.Quiz.MinOptions > quiz.MaxOptions {
		problems = append(problems, fmt.Sprintf("quiz.min_options must be between %d and %d", quiz.DefaultMinimum, quiz.MaxOptions))
	}
	if _, err := logging.New(logging.Options{Level: c.Log.Level, Format: c.Log.Format}); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Settings are the quiz defaults seeded into an empty cache.
func (q QuizConfig) Settings() quiz.Settings {
	return quiz.Settings{DurationMinutes: q.DurationMinutes, QuestionCount: q.QuestionCount}
}

// Policy is the parsed zero count policy. Load has already validated it.
func (q QuizConfig) Policy() quiz.ZeroCountPolicy {
	policy, _ := quiz.ParseZeroCountPolicy(q.ZeroCountPolicy)
	return policy
}

func (l LogConfig) Options() logging.Options {
	return logging.Options{Level: l.Level, Format: l.Format, File: l.File}
}
