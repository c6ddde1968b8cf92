package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Mode       string `mapstructure:"mode"`
	CronSecret string `mapstructure:"cron_secret"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BlueStakesConfig controls the external ticketing API client.
type BlueStakesConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	LoginTimeoutSeconds  int    `mapstructure:"login_timeout_seconds"`
	SearchTimeoutSeconds int    `mapstructure:"search_timeout_seconds"`
	DetailTimeoutSeconds int    `mapstructure:"detail_timeout_seconds"`
	TokenTTLHours        int    `mapstructure:"token_ttl_hours"`
}

func (b *BlueStakesConfig) TokenTTL() time.Duration {
	return time.Duration(b.TokenTTLHours) * time.Hour
}

func (b *BlueStakesConfig) LoginTimeout() time.Duration {
	return time.Duration(b.LoginTimeoutSeconds) * time.Second
}

func (b *BlueStakesConfig) SearchTimeout() time.Duration {
	return time.Duration(b.SearchTimeoutSeconds) * time.Second
}

func (b *BlueStakesConfig) DetailTimeout() time.Duration {
	return time.Duration(b.DetailTimeoutSeconds) * time.Second
}

// SyncConfig controls the ticket sync pipeline.
type SyncConfig struct {
	DaysBack       int    `mapstructure:"days_back"`
	PageSize       int    `mapstructure:"page_size"`
	PageDelayMs    int    `mapstructure:"page_delay_ms"`
	TicketDelayMs  int    `mapstructure:"ticket_delay_ms"`
	Schedule       string `mapstructure:"schedule"`
	TokenSweepCron string `mapstructure:"token_sweep_cron"`
	LockTTLMinutes int    `mapstructure:"lock_ttl_minutes"`
}

func (s *SyncConfig) PageDelay() time.Duration {
	return time.Duration(s.PageDelayMs) * time.Millisecond
}

func (s *SyncConfig) TicketDelay() time.Duration {
	return time.Duration(s.TicketDelayMs) * time.Millisecond
}

func (s *SyncConfig) LockTTL() time.Duration {
	return time.Duration(s.LockTTLMinutes) * time.Minute
}

// JobsConfig controls the in-memory ticket update job queue.
type JobsConfig struct {
	GateCapacity   int `mapstructure:"gate_capacity"`
	MaxAgeHours    int `mapstructure:"max_age_hours"`
	TimeoutMinutes int `mapstructure:"timeout_minutes"`
	GCIntervalMin  int `mapstructure:"gc_interval_minutes"`
}

func (j *JobsConfig) MaxAge() time.Duration {
	return time.Duration(j.MaxAgeHours) * time.Hour
}

func (j *JobsConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutMinutes) * time.Minute
}

func (j *JobsConfig) GCInterval() time.Duration {
	return time.Duration(j.GCIntervalMin) * time.Minute
}

// UpdaterConfig points at the external browser-automation service that
// performs the actual ticket renewal.
type UpdaterConfig struct {
	ServiceURL     string `mapstructure:"service_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (u *UpdaterConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

type EncryptionConfig struct {
	Key string `mapstructure:"key"`
}
