package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./history.db"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the defaults of the engine and the names written to the game history.
type Game struct {
	Mode       string        `yaml:"mode" env:"GAME_MODE" env-default:"pvc"`
	Difficulty string        `yaml:"difficulty" env:"GAME_DIFFICULTY" env-default:"hard"`
	Tiers      []string      `yaml:"tiers" env:"GAME_TIERS" env-default:"easy,medium,hard"`
	ThinkDelay time.Duration `yaml:"think-delay" env:"GAME_THINK_DELAY" env-default:"500ms"`
	Player1    string        `yaml:"player1" env:"GAME_PLAYER1" env-default:"Player"`
	Player2    string        `yaml:"player2" env:"GAME_PLAYER2"`
	Session    string        `yaml:"session" env:"GAME_SESSION" env-default:"default"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// DifficultyTiers - parses the enabled difficulties.
func (that *Game) DifficultyTiers() ([]entity.Difficulty, error) {
	tiers := make([]entity.Difficulty, 0, len(that.Tiers))
	for _, raw := range that.Tiers {
		tier, err := entity.ParseDifficulty(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid game tier: %w", err)
		}

		tiers = append(tiers, tier)
	}

	return tiers, nil
}

func (that *Game) Players() entity.Players {
	return entity.Players{First: that.Player1, Second: that.Player2}
}
