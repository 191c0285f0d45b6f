// Comando principal del API de Talentia: serve, migrate y seed.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/talentia/talentia-api/internal/app"
	"github.com/talentia/talentia-api/internal/config"
	httpx "github.com/talentia/talentia-api/internal/http"
	"github.com/talentia/talentia-api/internal/infra/cachefactory"
	jwtx "github.com/talentia/talentia-api/internal/jwt"
	"github.com/talentia/talentia-api/internal/observability/logger"
	"github.com/talentia/talentia-api/internal/rate"
	"github.com/talentia/talentia-api/internal/rbac"
	"github.com/talentia/talentia-api/internal/security/password"
	"github.com/talentia/talentia-api/internal/store/pg"
	"github.com/talentia/talentia-api/internal/token"
	migrations "github.com/talentia/talentia-api/migrations/postgres"
)

var configPath string

func main() {
	// .env es opcional: en producción las vars vienen del entorno.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "talentia",
		Short:         "API backend de Talentia (auth core)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("TALENTIA_CONFIG"), "ruta del YAML de configuración")

	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := pg.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			defer store.Close()

			container, err := buildContainer(cfg, store)
			if err != nil {
				return err
			}

			logger.L().Info("starting",
				logger.Component("main"),
				logger.Any("env", cfg.App.Env),
				logger.Any("cache", cfg.Cache.Kind))
			return httpx.NewServer(container).Start(ctx)
		},
	}
}

// buildContainer cablea todas las dependencias concretas.
func buildContainer(cfg *config.Config, store *pg.Store) (*app.Container, error) {
	issuer, err := jwtx.NewIssuerFromSeed(cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.Ed25519Seed, cfg.AccessTTL())
	if err != nil {
		return nil, fmt.Errorf("jwt issuer: %w", err)
	}

	cacheCfg := cachefactory.Config{Kind: cfg.Cache.Kind}
	cacheCfg.Redis.Addr = cfg.Cache.Redis.Addr
	cacheCfg.Redis.DB = cfg.Cache.Redis.DB
	cacheCfg.Redis.Prefix = cfg.Cache.Redis.Prefix
	cacheCfg.Memory.DefaultTTL = config.Duration(cfg.Cache.Memory.DefaultTTL, 0)
	rbacCache := cachefactory.Open(cacheCfg)

	resolver := rbac.NewResolver(rbac.Deps{
		Store:        store,
		Teams:        store,
		Cache:        rbacCache,
		TTL:          cfg.RBACCacheTTL(),
		AdminRoles:   cfg.RBAC.AdminRoles,
		ManagerRoles: cfg.RBAC.ManagerRoles,
	})

	tokens := token.NewService(token.Deps{
		Ledger:     store,
		Users:      store,
		Issuer:     issuer,
		RefreshTTL: cfg.RefreshTTL(),
	})

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" && cfg.Cache.Redis.Addr != "" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			limiter = rate.NewRedisLimiter(client, "rl:login:", cfg.Rate.Login.Limit, cfg.LoginRateWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginRateWindow())
		}
	}

	return &app.Container{
		Cfg:          cfg,
		Users:        store,
		RBAC:         store,
		Teams:        store,
		Tokens:       tokens,
		Resolver:     resolver,
		Issuer:       issuer,
		Hasher:       password.NewArgon2id(),
		LoginLimiter: limiter,
		Ready:        store.Ping,
	}, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes del esquema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			store, err := pg.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			defer store.Close()

			return migrations.Apply(ctx, store.Pool())
		},
	}
}
