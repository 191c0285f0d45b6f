package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
		// Nivel de log: debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer      string `yaml:"issuer"`
		Audience    string `yaml:"audience"`
		AccessTTL   string `yaml:"access_ttl"`
		RefreshTTL  string `yaml:"refresh_ttl"`
		Ed25519Seed string `yaml:"ed25519_seed"` // base64(32 bytes)
	} `yaml:"jwt"`

	Auth struct {
		Cookie struct {
			Name     string `yaml:"name"`
			Domain   string `yaml:"domain"`
			SameSite string `yaml:"samesite"` // lax | strict | none
			Secure   bool   `yaml:"secure"`
			Path     string `yaml:"path"`
		} `yaml:"cookie"`
	} `yaml:"auth"`

	RBAC struct {
		CacheTTL     string   `yaml:"cache_ttl"`
		AdminRoles   []string `yaml:"admin_roles"`
		ManagerRoles []string `yaml:"manager_roles"`
	} `yaml:"rbac"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Login   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`
}

// Load lee el YAML (si existe), aplica overrides de entorno y defaults.
// path vacío => solo entorno + defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv permite pisar campos sensibles sin tocar el YAML.
func (c *Config) applyEnv() {
	if v := os.Getenv("TALENTIA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TALENTIA_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("TALENTIA_JWT_SEED"); v != "" {
		c.JWT.Ed25519Seed = v
	}
	if v := os.Getenv("TALENTIA_CACHE_KIND"); v != "" {
		c.Cache.Kind = v
	}
	if v := os.Getenv("TALENTIA_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("TALENTIA_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("TALENTIA_RATE_ENABLED"); v != "" {
		c.Rate.Enabled, _ = strconv.ParseBool(v)
	}
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "https://api.talentia.app"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "talentia-mobile"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7 días
	}
	if c.Auth.Cookie.Name == "" {
		c.Auth.Cookie.Name = "talentia_refresh"
	}
	if c.Auth.Cookie.Path == "" {
		// restringida al grupo de auth: solo viaja en refresh/logout
		c.Auth.Cookie.Path = "/v1/auth"
	}
	if c.RBAC.CacheTTL == "" {
		c.RBAC.CacheTTL = "60s"
	}
	if len(c.RBAC.AdminRoles) == 0 {
		c.RBAC.AdminRoles = []string{"ceo", "admin"}
	}
	if len(c.RBAC.ManagerRoles) == 0 {
		c.RBAC.ManagerRoles = []string{"manager"}
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
}

// Duration parsea un campo de duración con fallback.
func Duration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func (c *Config) AccessTTL() time.Duration  { return Duration(c.JWT.AccessTTL, 15*time.Minute) }
func (c *Config) RefreshTTL() time.Duration { return Duration(c.JWT.RefreshTTL, 7*24*time.Hour) }
func (c *Config) RBACCacheTTL() time.Duration { return Duration(c.RBAC.CacheTTL, time.Minute) }
func (c *Config) LoginRateWindow() time.Duration { return Duration(c.Rate.Login.Window, time.Minute) }
