package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBDriver string // mysql | postgres

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresHost    string
	PostgresPort    string
	PostgresDB      string
	PostgresUser    string
	PostgresPass    string
	PostgresSSLMode string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	AdminPassword   string
	DeletePassword  string
	HistoryPassword string

	SessionTTL      time.Duration
	Heartbeat       time.Duration
	PresenceStale   time.Duration
	PresenceTouch   time.Duration
	SlowQuery       time.Duration
	ShutdownTimeout time.Duration

	SeenTTL time.Duration

	ReceiptCompany string
	ReceiptAddress string

	LogLevel  string
	LogFormat string
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "mysql")

	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "materials")
	v.SetDefault("MYSQL_USER", "materials")
	v.SetDefault("MYSQL_PASS", "materials")

	v.SetDefault("POSTGRES_HOST", "postgres")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_DB", "materials")
	v.SetDefault("POSTGRES_USER", "materials")
	v.SetDefault("POSTGRES_PASS", "materials")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)

	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("DELETE_PASSWORD", "722379")
	v.SetDefault("HISTORY_PASSWORD", "1432")

	v.SetDefault("SESSION_TTL_MINUTES", 720)
	v.SetDefault("HEARTBEAT_SECONDS", 5)
	// zero means three heartbeats
	v.SetDefault("PRESENCE_STALE_SECONDS", 0)
	v.SetDefault("PRESENCE_TOUCH_SECONDS", 5)
	v.SetDefault("SLOW_QUERY_MS", 200)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("NOTIFICATION_SEEN_DAYS", 90)
	v.SetDefault("RECEIPT_COMPANY", "Material Tracker")
	v.SetDefault("RECEIPT_ADDRESS", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads an optional .env file and then the environment. Real
// environment variables win over .env entries.
func Load() *Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	c := &Config{
		AppPort:  v.GetString("APP_PORT"),
		AppEnv:   v.GetString("APP_ENV"),
		DBDriver: v.GetString("DB_DRIVER"),

		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		PostgresHost:    v.GetString("POSTGRES_HOST"),
		PostgresPort:    v.GetString("POSTGRES_PORT"),
		PostgresDB:      v.GetString("POSTGRES_DB"),
		PostgresUser:    v.GetString("POSTGRES_USER"),
		PostgresPass:    v.GetString("POSTGRES_PASS"),
		PostgresSSLMode: v.GetString("POSTGRES_SSLMODE"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisDB:      v.GetInt("REDIS_DB"),
		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		DeletePassword:  v.GetString("DELETE_PASSWORD"),
		HistoryPassword: v.GetString("HISTORY_PASSWORD"),

		SessionTTL:      time.Duration(v.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
		Heartbeat:       time.Duration(v.GetInt("HEARTBEAT_SECONDS")) * time.Second,
		PresenceStale:   time.Duration(v.GetInt("PRESENCE_STALE_SECONDS")) * time.Second,
		PresenceTouch:   time.Duration(v.GetInt("PRESENCE_TOUCH_SECONDS")) * time.Second,
		SlowQuery:       time.Duration(v.GetInt("SLOW_QUERY_MS")) * time.Millisecond,
		ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,

		SeenTTL: time.Duration(v.GetInt("NOTIFICATION_SEEN_DAYS")) * 24 * time.Hour,

		ReceiptCompany: v.GetString("RECEIPT_COMPANY"),
		ReceiptAddress: v.GetString("RECEIPT_ADDRESS"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
	if c.PresenceStale <= 0 {
		c.PresenceStale = 3 * c.Heartbeat
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDB == "" || c.PostgresUser == "" {
			return errors.New("missing Postgres config (POSTGRES_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PostgresPort); err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.PostgresPort, err)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql or postgres)", c.DBDriver)
	}
	if c.AdminPassword == "" {
		return errors.New("missing ADMIN_PASSWORD")
	}
	if c.DeletePassword == "" || c.HistoryPassword == "" {
		return errors.New("missing DELETE_PASSWORD/HISTORY_PASSWORD")
	}
	if c.SessionTTL <= 0 || c.Heartbeat <= 0 {
		return errors.New("SESSION_TTL_MINUTES and HEARTBEAT_SECONDS must be positive")
	}
	// a zero TTL would keep idempotency entries and presence throttles forever
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.PresenceTouch <= 0 {
		return errors.New("PRESENCE_TOUCH_SECONDS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; clientFoundRows makes no-op updates count as matched
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&clientFoundRows=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSLMode)
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.PostgresDSN()
	}
	return c.MySQLDSN()
}
