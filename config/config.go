package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tankbot/bot/application"
	"tankbot/utils"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config はボットプロセスの設定です。
// 既定値、YAMLファイル、環境変数、フラグの順に上書きします。
type Config struct {
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Path       string `yaml:"path"`
	Nickname   string `yaml:"nickname"`
	JoinCode   string `yaml:"joinCode"`
	QuickJoin  bool   `yaml:"quickJoin"`
	PlayerType string `yaml:"playerType"`

	LogLevel string `yaml:"logLevel"`
	OTLP     bool   `yaml:"otlp"`

	DeadlineMargin      time.Duration `yaml:"deadlineMargin"`
	IdleTimeout         time.Duration `yaml:"idleTimeout"`
	ReconnectMaxElapsed time.Duration `yaml:"reconnectMaxElapsed"` // 0 なら無期限に再接続
	ResultsDSN          string        `yaml:"resultsDSN"`

	Tuning application.Config `yaml:"tuning"`
}

func Default() Config {
	return Config{
		Host:                "localhost",
		Port:                "5000",
		Path:                "/",
		Nickname:            "tankbot",
		PlayerType:          "hackathonBot",
		LogLevel:            "info",
		DeadlineMargin:      time.Millisecond,
		IdleTimeout:         10 * time.Second,
		ReconnectMaxElapsed: 5 * time.Minute,
		Tuning:              application.DefaultConfig(),
	}
}

// LoadFile はYAMLファイルの値で cfg を上書きします。ファイルにないキーは元の値のままです。
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = utils.GetEnvDefault("BOT_HOST", c.Host)
	c.Port = utils.GetEnvDefault("BOT_PORT", c.Port)
	c.Nickname = utils.GetEnvDefault("BOT_NICKNAME", c.Nickname)
	c.JoinCode = utils.GetEnvDefault("BOT_JOIN_CODE", c.JoinCode)
	c.QuickJoin = utils.GetEnvBool("BOT_QUICK_JOIN", c.QuickJoin)
	c.LogLevel = utils.GetEnvDefault("LOG_LEVEL", c.LogLevel)
	c.OTLP = utils.GetEnvBool("BOT_OTLP", c.OTLP)
	c.DeadlineMargin = utils.GetEnvDuration("BOT_DEADLINE_MARGIN", c.DeadlineMargin)
	c.IdleTimeout = utils.GetEnvDuration("BOT_IDLE_TIMEOUT", c.IdleTimeout)
	c.ReconnectMaxElapsed = utils.GetEnvDuration("BOT_RECONNECT_MAX_ELAPSED", c.ReconnectMaxElapsed)
	c.ResultsDSN = utils.GetEnvDefault("BOT_RESULTS_DSN", c.ResultsDSN)
	c.Tuning.Horizon = utils.GetEnvInt("BOT_HORIZON", c.Tuning.Horizon)
	c.Tuning.StallChance = utils.GetEnvInt("BOT_STALL_CHANCE", c.Tuning.StallChance)
	c.Tuning.Seed = uint64(utils.GetEnvInt("BOT_SEED", int(c.Tuning.Seed)))
}

// Load は args（プログラム名を除く）と環境変数から設定を組み立てて検証します。
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("bot", flag.ContinueOnError)
	path := fs.String("config", utils.GetEnvDefault("BOT_CONFIG", ""), "YAML config file")

	// フラグは明示されたものだけ最後に反映する
	var f Config
	fs.StringVar(&f.Host, "host", "", "game server host")
	fs.StringVar(&f.Port, "port", "", "game server port")
	fs.StringVar(&f.Nickname, "nickname", "", "nickname shown in the lobby")
	fs.StringVar(&f.JoinCode, "code", "", "join code of the match")
	fs.BoolVar(&f.QuickJoin, "quick-join", false, "join the first available match")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&f.OTLP, "otlp", false, "export traces and logs over OTLP")
	fs.DurationVar(&f.DeadlineMargin, "deadline-margin", 0, "margin subtracted from the tick interval")
	fs.StringVar(&f.ResultsDSN, "results", "", "results sink: postgres:// URL, sqlite path, or empty to log only")
	fs.Uint64Var(&f.Tuning.Seed, "seed", 0, "random seed, 0 uses the lobby seed")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *path != "" {
		if err := LoadFile(*path, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "host":
			cfg.Host = f.Host
		case "port":
			cfg.Port = f.Port
		case "nickname":
			cfg.Nickname = f.Nickname
		case "code":
			cfg.JoinCode = f.JoinCode
		case "quick-join":
			cfg.QuickJoin = f.QuickJoin
		case "log-level":
			cfg.LogLevel = f.LogLevel
		case "otlp":
			cfg.OTLP = f.OTLP
		case "deadline-margin":
			cfg.DeadlineMargin = f.DeadlineMargin
		case "results":
			cfg.ResultsDSN = f.ResultsDSN
		case "seed":
			cfg.Tuning.Seed = f.Tuning.Seed
		}
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Host == "" || c.Port == "" {
		errs = append(errs, errors.New("host and port are required"))
	}
	if c.Tuning.Horizon <= 0 {
		errs = append(errs, fmt.Errorf("horizon must be positive, got %d", c.Tuning.Horizon))
	}
	if c.Tuning.BulletProjection < 0 {
		errs = append(errs, fmt.Errorf("bullet projection must not be negative, got %d", c.Tuning.BulletProjection))
	}
	if c.Tuning.ItemRange <= 0 || c.Tuning.DoubleBulletRange <= 0 {
		errs = append(errs, fmt.Errorf("item ranges must be positive, got %d/%d", c.Tuning.ItemRange, c.Tuning.DoubleBulletRange))
	}
	if c.Tuning.StallChance <= 0 {
		errs = append(errs, fmt.Errorf("stall chance must be positive, got %d", c.Tuning.StallChance))
	}
	if c.DeadlineMargin < 0 {
		errs = append(errs, fmt.Errorf("deadline margin must not be negative, got %v", c.DeadlineMargin))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
