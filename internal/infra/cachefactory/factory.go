package cachefactory

import (
	"strings"
	"time"

	"github.com/talentia/talentia-api/internal/cache"
	cmem "github.com/talentia/talentia-api/internal/cache/memory"
	credis "github.com/talentia/talentia-api/internal/cache/redis"
)

// Config selecciona el backend de cache.
type Config struct {
	Kind  string // "memory" (default) | "redis"
	Redis struct {
		Addr   string
		DB     int
		Prefix string
	}
	Memory struct {
		DefaultTTL time.Duration
	}
}

// Open construye el backend según configuración. Con varias réplicas del
// API conviene redis para compartir el cache RBAC entre procesos.
func Open(cfg Config) cache.Cache {
	switch strings.ToLower(cfg.Kind) {
	case "redis":
		return credis.New(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
	default:
		d := cfg.Memory.DefaultTTL
		if d == 0 {
			d = 2 * time.Minute
		}
		return cmem.New(d)
	}
}
