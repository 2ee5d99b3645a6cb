package config

import (
	"strings"
	"testing"
	"time"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_PASSWORD", "admin-secret")
}

func TestLoad_Defaults(t *testing.T) {
	validEnv(t)
	c := Load()

	if c.AppPort != "8080" || c.DBDriver != "mysql" {
		t.Fatalf("unexpected defaults: port=%q driver=%q", c.AppPort, c.DBDriver)
	}
	if c.Heartbeat != 5*time.Second {
		t.Fatalf("Heartbeat = %v", c.Heartbeat)
	}
	if c.PresenceStale != 15*time.Second {
		t.Fatalf("PresenceStale = %v, want 3 heartbeats", c.PresenceStale)
	}
	if c.DeletePassword != "722379" || c.HistoryPassword != "1432" {
		t.Fatalf("unexpected password defaults")
	}
	if c.IdempTTLSecs != 300 {
		t.Fatalf("IdempTTLSecs = %d", c.IdempTTLSecs)
	}
	if c.SeenTTL != 90*24*time.Hour || c.ReceiptCompany == "" {
		t.Fatalf("SeenTTL = %v company = %q", c.SeenTTL, c.ReceiptCompany)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	validEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("PRESENCE_STALE_SECONDS", "40")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")

	c := Load()
	if c.AppPort != "9090" || c.RedisDB != 3 || c.IdempTTLSecs != 60 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.PresenceStale != 40*time.Second {
		t.Fatalf("PresenceStale = %v", c.PresenceStale)
	}
	if !strings.Contains(c.DSN(), "host=db.internal") {
		t.Fatalf("DSN = %q", c.DSN())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "no port", mutate: func(c *Config) { c.AppPort = "" }, wantErr: "APP_PORT"},
		{name: "bad driver", mutate: func(c *Config) { c.DBDriver = "oracle" }, wantErr: "DB_DRIVER"},
		{name: "mysql missing host", mutate: func(c *Config) { c.MySQLHost = "" }, wantErr: "MySQL"},
		{name: "mysql bad port", mutate: func(c *Config) { c.MySQLPort = "not-a-port" }, wantErr: "MYSQL_PORT"},
		{name: "postgres missing db", mutate: func(c *Config) { c.DBDriver = "postgres"; c.PostgresDB = "" }, wantErr: "Postgres"},
		{name: "no admin password", mutate: func(c *Config) { c.AdminPassword = "" }, wantErr: "ADMIN_PASSWORD"},
		{name: "no delete password", mutate: func(c *Config) { c.DeletePassword = "" }, wantErr: "DELETE_PASSWORD"},
		{name: "zero heartbeat", mutate: func(c *Config) { c.Heartbeat = 0 }, wantErr: "HEARTBEAT_SECONDS"},
		{name: "zero idempotency ttl", mutate: func(c *Config) { c.IdempTTLSecs = 0 }, wantErr: "IDEMPOTENCY_TTL_SECONDS"},
		{name: "negative idempotency ttl", mutate: func(c *Config) { c.IdempTTLSecs = -5 }, wantErr: "IDEMPOTENCY_TTL_SECONDS"},
		{name: "zero presence touch", mutate: func(c *Config) { c.PresenceTouch = 0 }, wantErr: "PRESENCE_TOUCH_SECONDS"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := FromViper(newViper())
			c.AdminPassword = "x"
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "h", MySQLPort: "3306", MySQLDB: "d", DBDriver: "mysql"}
	want := "u:p@tcp(h:3306)/d?multiStatements=true&parseTime=true&clientFoundRows=true&charset=utf8mb4,utf8"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}
