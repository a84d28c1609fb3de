package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	SendBuffer int           `mapstructure:"send_buffer"`

	PingPeriod    time.Duration `mapstructure:"ping_period"`
	PongWait      time.Duration `mapstructure:"pong_wait"`
	MaxSilence    time.Duration `mapstructure:"max_silence"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	MinPlayers       int           `mapstructure:"min_players"`
	MaxPlayers       int           `mapstructure:"max_players"`
	ServiceCharge    float64       `mapstructure:"service_charge"`
	BatchMinInterval time.Duration `mapstructure:"batch_min_interval"`

	AdminKey     string   `mapstructure:"admin_key"`
	Secret       string   `mapstructure:"secret"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 64)
	v.SetDefault("ping_period", "25s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("max_silence", "90s")
	v.SetDefault("sweep_interval", "30s")
	v.SetDefault("min_players", 2)
	v.SetDefault("max_players", 50)
	v.SetDefault("service_charge", 0.2)
	v.SetDefault("batch_min_interval", "250ms")
	v.SetDefault("allow_origins", []string{"http://localhost:3000"})

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}
	if key := os.Getenv("ADMIN_KEY"); key != "" {
		v.Set("admin_key", key)
	}
	if secret := os.Getenv("SECRET"); secret != "" {
		v.Set("secret", secret)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ServiceCharge < 0 || cfg.ServiceCharge >= 1 {
		return nil, fmt.Errorf("service_charge must be in [0,1): %v", cfg.ServiceCharge)
	}
	if cfg.MinPlayers < 2 {
		return nil, fmt.Errorf("min_players must be at least 2: %d", cfg.MinPlayers)
	}
	return &cfg, nil
}
