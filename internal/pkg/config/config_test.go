package config

import (
	"errors"
	"testing"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 60},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "bloomwatch", DBName: "bloomwatch", SSLMode: "disable"},
		EarthEngine: EarthEngineConfig{
			Endpoint: "https://earthengine.googleapis.com",
			Project:  "demo",
			KeyJSON:  `{"type":"service_account"}`,
		},
		Charts: ChartsConfig{Dir: "static/charts", URLPrefix: "/static/charts"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	var ce *domain.ConfigError
	if err := cfg.Validate(); !errors.As(err, &ce) {
		t.Errorf("error = %v, want ConfigError", err)
	}
}

func TestValidate_MissingEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.EarthEngine.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestEarthEngineValidate_MissingCredential(t *testing.T) {
	ee := EarthEngineConfig{Endpoint: "https://earthengine.googleapis.com", Project: "demo"}
	err := ee.Validate()
	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if ce.Reason != "EE_KEY_JSON environment variable is not set" {
		t.Errorf("reason = %q", ce.Reason)
	}
}

func TestLoad_CredentialFromEnv(t *testing.T) {
	t.Setenv("EE_KEY_JSON", `{"type":"service_account"}`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EarthEngine.KeyJSON == "" {
		t.Error("credential not read from environment")
	}
	if err := cfg.EarthEngine.Validate(); err != nil {
		t.Errorf("credential rejected: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "bloomwatch", SSLMode: "disable"}
	want := "postgres://u:p@db:5432/bloomwatch?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}
