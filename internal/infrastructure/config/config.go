package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/diglink-inc/diglink/internal/shared/config"
)

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	BlueStakes sharedConfig.BlueStakesConfig `mapstructure:"bluestakes"`
	Sync       sharedConfig.SyncConfig       `mapstructure:"sync"`
	Jobs       sharedConfig.JobsConfig       `mapstructure:"jobs"`
	Updater    sharedConfig.UpdaterConfig    `mapstructure:"updater"`
	Encryption sharedConfig.EncryptionConfig `mapstructure:"encryption"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("DIGLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.cron_secret", "")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "diglink_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("bluestakes.base_url", "https://newtiny-api.bluestakes.org/api")
	viper.SetDefault("bluestakes.login_timeout_seconds", 30)
	viper.SetDefault("bluestakes.search_timeout_seconds", 60)
	viper.SetDefault("bluestakes.detail_timeout_seconds", 30)
	viper.SetDefault("bluestakes.token_ttl_hours", 1)

	viper.SetDefault("sync.days_back", 28)
	viper.SetDefault("sync.page_size", 100)
	viper.SetDefault("sync.page_delay_ms", 500)
	viper.SetDefault("sync.ticket_delay_ms", 100)
	viper.SetDefault("sync.schedule", "0 2 * * *")
	viper.SetDefault("sync.token_sweep_cron", "*/30 * * * *")
	viper.SetDefault("sync.lock_ttl_minutes", 120)

	viper.SetDefault("jobs.gate_capacity", 1)
	viper.SetDefault("jobs.max_age_hours", 24)
	viper.SetDefault("jobs.timeout_minutes", 10)
	viper.SetDefault("jobs.gc_interval_minutes", 60)

	viper.SetDefault("updater.service_url", "")
	viper.SetDefault("updater.timeout_seconds", 300)

	viper.SetDefault("encryption.key", "change-me-in-production")
}
