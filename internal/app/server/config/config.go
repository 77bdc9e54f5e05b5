package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress = ":8080"
	defaultLLMURL     = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel   = "gpt-4o-mini"
	defaultUploadDir  = "uploads"
)

type Config struct {
	Env     string
	DB      DB
	Server  Server
	Logger  Logger
	LLM     LLM
	Storage Storage
}

type DB struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type Server struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	PublicURL       string        `env:"PUBLIC_URL"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

type Logger struct {
	LogLevel string `env:"LOG_LEVEL"`
}

// LLM параметры внешнего API языковой модели
type LLM struct {
	APIKey  string        `env:"LLM_API_KEY"`
	APIURL  string        `env:"LLM_API_URL"`
	Model   string        `env:"LLM_MODEL"`
	Timeout time.Duration `env:"LLM_TIMEOUT"`
}

// Storage каталог для загружаемых файлов (фото блюд)
type Storage struct {
	UploadDir string `env:"UPLOAD_DIR"`
}

func MustLoad() *Config {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Fatalf("load %s: %v", envPath, err)
		}
	}

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	viper.SetDefault("LLM_API_URL", defaultLLMURL)
	viper.SetDefault("LLM_MODEL", defaultLLMModel)
	viper.SetDefault("LLM_TIMEOUT", 60*time.Second)
	viper.SetDefault("UPLOAD_DIR", defaultUploadDir)

	cfg := &Config{
		Env: viper.GetString("APP_ENV"),
		DB: DB{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: Server{
			RunAddress:      viper.GetString("RUN_ADDRESS"),
			PublicURL:       viper.GetString("PUBLIC_URL"),
			ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Logger: Logger{LogLevel: viper.GetString("LOG_LEVEL")},
		LLM: LLM{
			APIKey:  viper.GetString("LLM_API_KEY"),
			APIURL:  viper.GetString("LLM_API_URL"),
			Model:   viper.GetString("LLM_MODEL"),
			Timeout: viper.GetDuration("LLM_TIMEOUT"),
		},
		Storage: Storage{UploadDir: viper.GetString("UPLOAD_DIR")},
	}

	if cfg.DB.DatabaseURI == "" {
		log.Fatalln("DATABASE_URI is required")
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost" + cfg.Server.RunAddress
	}

	return cfg
}
