package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "warn"
	defaultEnv           = "local"
	defaultConfigDir     = ".hemapp"
	defaultDataFile      = "hemapp.db"
	defaultMaxAttempts   = 5
	defaultRetryDelay    = 5 * time.Second
	defaultProbeInterval = 15
)

type Config struct {
	Env           string        `mapstructure:"app_env"`
	ServerAddress string        `mapstructure:"server_address"`
	LogLevel      string        `mapstructure:"log_level"`
	ConfigDir     string        `mapstructure:"config_dir"`
	TokenPath     string        `mapstructure:"token_path"`
	DataPath      string        `mapstructure:"data_path"`
	EnableTLS     bool          `mapstructure:"enable_tls"`
	Sync          Sync          `mapstructure:"sync"`
	ProbeInterval time.Duration `mapstructure:"probe_interval_seconds"`
}

// Sync параметры повторной отправки офлайн-очереди
type Sync struct {
	MaxAttempts int           `mapstructure:"sync_max_attempts"`
	RetryDelay  time.Duration `mapstructure:"sync_retry_delay"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env, переменные окружения и уже прочитанный viper конфиг-файл
func Load() (*Config, error) {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("SYNC_MAX_ATTEMPTS", defaultMaxAttempts)
	viper.SetDefault("SYNC_RETRY_DELAY", defaultRetryDelay)
	viper.SetDefault("PROBE_INTERVAL_SECONDS", defaultProbeInterval)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	dataPath := viper.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, defaultDataFile)
	}

	cfg := &Config{
		Env:           viper.GetString("APP_ENV"),
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		ConfigDir:     configDir,
		TokenPath:     filepath.Join(configDir, "token"),
		DataPath:      dataPath,
		EnableTLS:     viper.GetBool("ENABLE_TLS"),
		Sync: Sync{
			MaxAttempts: viper.GetInt("SYNC_MAX_ATTEMPTS"),
			RetryDelay:  viper.GetDuration("SYNC_RETRY_DELAY"),
		},
		ProbeInterval: time.Duration(viper.GetInt("PROBE_INTERVAL_SECONDS")) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync_max_attempts должен быть больше нуля")
	}
	if c.Sync.RetryDelay <= 0 {
		return fmt.Errorf("sync_retry_delay должен быть положительным")
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe_interval_seconds должен быть положительным")
	}
	return nil
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.EnableTLS {
		scheme = "https"
	}
	return scheme + "://" + c.ServerAddress
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
