package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverHTTP       = "http"
	DriverLangChain  = "langchaingo"
	defaultLLMAPIURL = "https://api.deepseek.com/v1/chat/completions"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	CORS      CORSConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
}

// LLMConfig is read once at startup and passed by value to the completion client.
type LLMConfig struct {
	Driver      string
	APIURL      string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

type CORSConfig struct {
	AllowOrigins []string
}

type LoggerConfig struct {
	Level string
	Env   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "40s")
	v.SetDefault("server.write_timeout", "40s")
	v.SetDefault("server.body_limit_mb", 10)

	v.SetDefault("llm.driver", DriverLangChain)
	v.SetDefault("llm.api_url", defaultLLMAPIURL)
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.timeout", "30s")

	v.SetDefault("cors.allow_origins", []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	})

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.max", 0)
	v.SetDefault("rate_limit.window", "1m")
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables always win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimitMB:  v.GetInt("server.body_limit_mb"),
		},
		LLM: LLMConfig{
			Driver:      strings.ToLower(v.GetString("llm.driver")),
			APIURL:      v.GetString("llm.api_url"),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		CORS: CORSConfig{
			AllowOrigins: v.GetStringSlice("cors.allow_origins"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			Max:    v.GetInt("rate_limit.max"),
			Window: v.GetDuration("rate_limit.window"),
		},
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if env := os.Getenv("ENV"); env == "production" {
		config.Logger.Env = env
	}
	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		config.CORS.AllowOrigins = strings.Split(origins, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings the quiz pipeline cannot run without
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key (or DEEPSEEK_API_KEY) must be set")
	}
	if c.LLM.APIURL == "" {
		return errors.New("llm.api_url must be set")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature)
	}
	switch c.LLM.Driver {
	case DriverHTTP, DriverLangChain:
	default:
		return fmt.Errorf("unsupported llm.driver %q", c.LLM.Driver)
	}
	if c.RateLimit.Max > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive when rate_limit.max is set")
	}
	return nil
}

// BodyLimitBytes returns the maximum accepted request body size
func (c *Config) BodyLimitBytes() int {
	if c.Server.BodyLimitMB <= 0 {
		return 10 * 1024 * 1024
	}
	return c.Server.BodyLimitMB * 1024 * 1024
}
