package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talentia/talentia-api/internal/observability/logger"
	"github.com/talentia/talentia-api/internal/security/password"
	"github.com/talentia/talentia-api/internal/store/pg"
)

// Esquema de roles inicial de la agencia. Los permisos de cada rol se
// pueden ajustar después desde los endpoints de admin.
var seedRoles = map[string][]string{
	"ceo":       {"*"},
	"admin":     {"manage:all"},
	"manager":   {"read:all", "read:candidates", "write:candidates", "read:offers", "write:offers"},
	"recruiter": {"read:candidates", "write:candidates", "read:offers"},
	"viewer":    {"read:candidates", "read:offers"},
}

func seedCmd() *cobra.Command {
	var adminEmail, adminPassword, adminName string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea roles y permisos base, y opcionalmente un usuario admin",
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

			if err := seedRBAC(ctx, store); err != nil {
				return err
			}
			if adminEmail != "" {
				if adminPassword == "" {
					return fmt.Errorf("seed: --admin-password es obligatorio con --admin-email")
				}
				if err := seedAdmin(ctx, store, adminEmail, adminPassword, adminName); err != nil {
					return err
				}
			}
			logger.L().Info("seed done", logger.Component("seed"))
			return nil
		},
	}

	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "email del usuario admin inicial")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password del usuario admin inicial")
	cmd.Flags().StringVar(&adminName, "admin-name", "Admin", "nombre del usuario admin inicial")
	return cmd
}

// seedRBAC inserta roles y permisos. Idempotente (ON CONFLICT DO NOTHING).
func seedRBAC(ctx context.Context, store *pg.Store) error {
	pool := store.Pool()
	for role, perms := range seedRoles {
		if _, err := pool.Exec(ctx,
			`INSERT INTO role (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role); err != nil {
			return fmt.Errorf("seed: role %s: %w", role, err)
		}
		for _, perm := range perms {
			if _, err := pool.Exec(ctx,
				`INSERT INTO permission (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, perm); err != nil {
				return fmt.Errorf("seed: permission %s: %w", perm, err)
			}
			if _, err := pool.Exec(ctx, `
				INSERT INTO role_permission (role_id, permission_id)
				SELECT r.id, p.id FROM role r, permission p
				WHERE r.name = $1 AND p.name = $2
				ON CONFLICT DO NOTHING`, role, perm); err != nil {
				return fmt.Errorf("seed: grant %s -> %s: %w", role, perm, err)
			}
		}
	}
	return nil
}

// seedAdmin crea (o actualiza la password de) el usuario admin inicial y
// le asigna el rol admin.
func seedAdmin(ctx context.Context, store *pg.Store, email, plain, name string) error {
	hash, err := password.NewArgon2id().Hash(plain)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	pool := store.Pool()
	email = strings.TrimSpace(strings.ToLower(email))

	var userID string
	if err := pool.QueryRow(ctx, `
		INSERT INTO app_user (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (lower(email)) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id`, email, name, hash).Scan(&userID); err != nil {
		return fmt.Errorf("seed: upsert admin user: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO user_role (user_id, role_id)
		SELECT $1, id FROM role WHERE name = 'admin'
		ON CONFLICT DO NOTHING`, userID); err != nil {
		return fmt.Errorf("seed: assign admin role: %w", err)
	}

	logger.L().Info("admin user seeded", logger.Component("seed"), logger.UserID(userID))
	return nil
}
