package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/driver"
)

const (
	ServerStartPort = ":8080"
)

type Config struct {
	Stripe   StripeConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Tracing  TracingConfig
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	JaegerURL   string `mapstructure:"jaeger_url"`
	ServiceName string `mapstructure:"service_name"`
}

func ProvideApplicationConfig() (*Config, error) {

	viper.SetConfigFile("./config.yaml")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func ProvidePostgresConn(appConfig *Config) (driver.PostgresPool, error) {

	conn, err := driver.ConnectSQL(appConfig.Postgres.URL)
	if err != nil {
		return nil, err
	}

	return conn.Pool, nil
}

func ProvideRedisClient(appConfig *Config) (*redis.Client, error) {
	return driver.ConnectRedis(appConfig.Redis.Addr, appConfig.Redis.Password, 0)
}

func NewLogger() *zap.Logger {

	logger, _ := zap.NewProduction()
	return logger
}
