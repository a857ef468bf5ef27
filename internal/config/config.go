package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port         string `yaml:"port" toml:"port"`
		ReadTimeout  string `yaml:"read_timeout" toml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" toml:"write_timeout"`
		RateLimit    int    `yaml:"rate_limit" toml:"rate_limit"`
	} `yaml:"server" toml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" toml:"addr"`
		Password string `yaml:"password" toml:"password"`
		DB       int    `yaml:"db" toml:"db"`
		TTL      string `yaml:"ttl" toml:"ttl"`
	} `yaml:"redis" toml:"redis"`
	Postgres struct {
		URL string `yaml:"url" toml:"url"`
	} `yaml:"postgres" toml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl" toml:"ttl"`
	} `yaml:"quiz" toml:"quiz"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`
		TokenTTL  string `yaml:"token_ttl" toml:"token_ttl"`
	} `yaml:"auth" toml:"auth"`
	Game     GameConfig     `yaml:"game" toml:"game"`
	Badges   BadgeConfig    `yaml:"badges" toml:"badges"`
	Analytic AnalyticConfig `yaml:"analytics" toml:"analytics"`
	Log      struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
	} `yaml:"log" toml:"log"`
}

// GameConfig holds scoring knobs.
type GameConfig struct {
	BasePoints          int   `yaml:"base_points" toml:"base_points"`
	SpeedBonus          int   `yaml:"speed_bonus" toml:"speed_bonus"`
	FastAnswerMs        int64 `yaml:"fast_answer_ms" toml:"fast_answer_ms"`
	StreakThreshold     int   `yaml:"streak_threshold" toml:"streak_threshold"`
	StreakMultiplier    int   `yaml:"streak_multiplier" toml:"streak_multiplier"`
	QuestionTimeLimitMs int64 `yaml:"question_time_limit_ms" toml:"question_time_limit_ms"`
}

// BadgeConfig holds the secret badge thresholds.
type BadgeConfig struct {
	NightStartHour    int    `yaml:"night_start_hour" toml:"night_start_hour"`
	NightEndHour      int    `yaml:"night_end_hour" toml:"night_end_hour"`
	LastSecondMs      int64  `yaml:"last_second_ms" toml:"last_second_ms"`
	LightningCount    int    `yaml:"lightning_count" toml:"lightning_count"`
	LightningWindowMs int64  `yaml:"lightning_window_ms" toml:"lightning_window_ms"`
	PerfectGameMin    int    `yaml:"perfect_game_min" toml:"perfect_game_min"`
	SpeedMinAnswers   int    `yaml:"speed_min_answers" toml:"speed_min_answers"`
	Timezone          string `yaml:"timezone" toml:"timezone"`
}

// AnalyticConfig holds weak-point detection thresholds.
type AnalyticConfig struct {
	MinAttempts  int     `yaml:"min_attempts" toml:"min_attempts"`
	WeakAccuracy float64 `yaml:"weak_accuracy" toml:"weak_accuracy"`
}

// Default returns a config with every knob at its documented default.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.RateLimit = 120
	cfg.Game = GameConfig{
		BasePoints:          10,
		SpeedBonus:          5,
		FastAnswerMs:        3000,
		StreakThreshold:     3,
		StreakMultiplier:    2,
		QuestionTimeLimitMs: 30000,
	}
	cfg.Badges = BadgeConfig{
		NightStartHour:    0,
		NightEndHour:      5,
		LastSecondMs:      1000,
		LightningCount:    5,
		LightningWindowMs: 15000,
		PerfectGameMin:    10,
		SpeedMinAnswers:   10,
		Timezone:          "Europe/Istanbul",
	}
	cfg.Analytic = AnalyticConfig{MinAttempts: 5, WeakAccuracy: 0.6}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML (or TOML, by extension) config from path on top of the defaults,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := decode(path, data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadOrDefault behaves like Load but tolerates a missing file.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) {
		cfg = Default()
		applyEnv(&cfg)
		return cfg, nil
	}
	return cfg, err
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Location resolves the badge timezone, falling back to UTC.
func (b BadgeConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
