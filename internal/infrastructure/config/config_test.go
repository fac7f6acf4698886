package config

import "testing"

func TestLoad_RequiresSecrets(t *testing.T) {
	if err := InitConfig("test"); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without DB_PASSWORD")
	}

	t.Setenv("DB_PASSWORD", "secret")
	if _, err := Load(); err == nil {
		t.Error("Load() should fail without JWT_SECRET")
	}
}

func TestLoad_Defaults(t *testing.T) {
	if err := InitConfig("test"); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "test-signing-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port == 0 {
		t.Error("expected a default server port")
	}
	if cfg.Poll.IntervalSeconds <= 0 {
		t.Error("expected a positive default poll interval")
	}
	if cfg.Poll.Interval().Seconds() != float64(cfg.Poll.IntervalSeconds) {
		t.Errorf("Interval() = %v, want %ds", cfg.Poll.Interval(), cfg.Poll.IntervalSeconds)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     15432,
		User:     "tomodachi",
		Password: "secret",
		Database: "tomodachi_test",
		SSLMode:  "disable",
	}

	want := "host=localhost port=15432 user=tomodachi password=secret dbname=tomodachi_test sslmode=disable"
	if got := cfg.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
