package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Session   SessionConfig   `yaml:"session"`
	Auth      AuthConfig      `yaml:"auth"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Reporting ReportingConfig `yaml:"reporting"`
	Trips     TripsConfig     `yaml:"trips"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	CookieSecure   bool     `yaml:"cookie_secure"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN prefers an explicit URL and falls back to key/value form.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type SessionConfig struct {
	Backend              string `yaml:"backend"`
	TTLSeconds           int    `yaml:"ttl_seconds"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds"`
	CookieName           string `yaml:"cookie_name"`
	CookieSecret         string `yaml:"cookie_secret"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

// AuthConfig holds the static fallback account checked when no stored admin matches.
type AuthConfig struct {
	FallbackUsername string `yaml:"fallback_username"`
	FallbackEmail    string `yaml:"fallback_email"`
	FallbackPassword string `yaml:"fallback_password"`
	FallbackRole     string `yaml:"fallback_role"`
}

type SMTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	SSL            bool   `yaml:"ssl"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	AdminBCC       string `yaml:"admin_bcc"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s SMTPConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type ReportingConfig struct {
	Timezone string `yaml:"timezone"`
}

// Location loads the reference timezone used by reporting filters.
func (r ReportingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

type TripsConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

func (t TripsConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.URL = getEnv("DB_URL", c.Database.URL)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getEnvInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.Username = getEnv("SMTP_USER", c.SMTP.Username)
	c.SMTP.Password = getEnv("SMTP_PASS", c.SMTP.Password)
	c.SMTP.From = getEnv("MAIL_FROM", c.SMTP.From)
	c.SMTP.AdminBCC = getEnv("ADMIN_BCC", c.SMTP.AdminBCC)
	c.Session.CookieSecret = getEnv("SESSION_COOKIE_SECRET", c.Session.CookieSecret)
	c.Session.TTLSeconds = getEnvInt("ADMIN_SESSION_TTL_SEC", c.Session.TTLSeconds)
	c.Auth.FallbackEmail = getEnv("ADMIN_EMAIL", c.Auth.FallbackEmail)
	c.Auth.FallbackPassword = getEnv("ADMIN_PASSWORD", c.Auth.FallbackPassword)
	if origins := splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		c.HTTP.AllowedOrigins = origins
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionBackendMemory
	}
	if c.Session.TTLSeconds <= 0 {
		c.Session.TTLSeconds = 24 * 60 * 60
	}
	if c.Session.SweepIntervalSeconds <= 0 {
		c.Session.SweepIntervalSeconds = 60
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "access_token"
	}
	if c.Auth.FallbackRole == "" {
		c.Auth.FallbackRole = "SUPER_ADMIN"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 465
	}
	if c.SMTP.TimeoutSeconds <= 0 {
		c.SMTP.TimeoutSeconds = 15
	}
	if c.Reporting.Timezone == "" {
		c.Reporting.Timezone = "Africa/Cairo"
	}
	if c.Trips.CacheTTLSeconds <= 0 {
		c.Trips.CacheTTLSeconds = 300
	}
}

func (c *Config) Validate() error {
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.CookieSecret == "" {
		return errors.New("session cookie secret is required")
	}
	if _, err := c.Reporting.Location(); err != nil {
		return fmt.Errorf("invalid reporting timezone: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return i
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
