package config

import (
	"fmt"
	"net/netip"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string
}

type StorageConfig struct {
	DataDir       string
	BackupDir     string
	BackupEnabled bool
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type HTTPConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set X-Forwarded-For; empty means no proxy is trusted.
	TrustedProxies []netip.Prefix
}

// Entity data files, relative to StorageConfig.DataDir.
const (
	AccountsFile      = "accounts.txt"
	PatientsFile      = "patients.txt"
	DoctorsFile       = "doctors.txt"
	AppointmentsFile  = "appointments.txt"
	MedicinesFile     = "medicines.txt"
	PrescriptionsFile = "prescriptions.txt"
	DepartmentsFile   = "departments.txt"
	AuditFile         = "audit.log"
)

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CLINIC_TIMEZONE", "Local")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("BACKUP_ENABLED", true)
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)

	// A missing .env is fine; environment variables and defaults still apply.
	_ = v.ReadInConfig()

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	trustedProxies, err := ParseTrustedProxies(v.GetString("TRUSTED_PROXIES"))
	if err != nil {
		return nil, err
	}

	dataDir := v.GetString("DATA_DIR")
	backupDir := v.GetString("BACKUP_DIR")
	if backupDir == "" {
		backupDir = filepath.Join(dataDir, "backup")
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Timezone: v.GetString("CLINIC_TIMEZONE"),
		},
		Storage: StorageConfig{
			DataDir:       dataDir,
			BackupDir:     backupDir,
			BackupEnabled: v.GetBool("BACKUP_ENABLED"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies: trustedProxies,
		},
	}

	if config.Storage.DataDir == "" {
		return nil, fmt.Errorf("DATA_DIR must not be empty")
	}

	return config, nil
}

// IsDev reports whether the application runs in development mode.
func (c *Config) IsDev() bool {
	return c.App.Env == "development"
}

// Location resolves CLINIC_TIMEZONE, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" || c.App.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DataFile joins name onto the data directory.
func (c *Config) DataFile(name string) string {
	return filepath.Join(c.Storage.DataDir, name)
}

// ParseTrustedProxies reads a comma-separated list of IP addresses and CIDR ranges.
func ParseTrustedProxies(s string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			prefix, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", part, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", part, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
