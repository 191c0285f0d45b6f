// Package rbac resuelve roles y permisos efectivos con un cache TTL.
// Los shortcuts de admin global viven acá, no desperdigados por handlers.
package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/talentia/talentia-api/internal/cache"
	"github.com/talentia/talentia-api/internal/domain/repository"
	"github.com/talentia/talentia-api/internal/metrics"
	"github.com/talentia/talentia-api/internal/observability/logger"
)

// Claves de permiso con semántica especial para el resolver.
const (
	WildcardPermission  = "*"
	ManageAllPermission = "manage:all"
	ReadAllPermission   = "read:all"
)

// Snapshot es el resultado cacheado de una resolución: roles asignados y
// permisos aplanados (unión de todos los roles, sin duplicados).
type Snapshot struct {
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// Deps contiene las dependencias del resolver.
type Deps struct {
	Store repository.RBACRepository
	Teams repository.TeamRepository
	Cache cache.Cache

	// TTL del cache (default 60s). El TTL se valida contra ResolvedAt con
	// el reloj inyectado: el backend solo hace de backstop.
	TTL time.Duration

	// AdminRoles: tener cualquiera pasa HasRole/HasPermission/CheckTeamAccess
	// incondicionalmente. Default: ceo, admin.
	AdminRoles []string

	// ManagerRoles: junto con el permiso read:all habilitan cualquier
	// equipo en CheckTeamAccess. Default: manager.
	ManagerRoles []string

	// Now es inyectable para tests; default time.Now.
	Now func() time.Time
}

type Resolver struct {
	deps Deps
	sf   singleflight.Group
}

func NewResolver(deps Deps) *Resolver {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.TTL <= 0 {
		deps.TTL = time.Minute
	}
	if len(deps.AdminRoles) == 0 {
		deps.AdminRoles = []string{"ceo", "admin"}
	}
	if len(deps.ManagerRoles) == 0 {
		deps.ManagerRoles = []string{"manager"}
	}
	return &Resolver{deps: deps}
}

func cacheKey(userID repository.UserID) string { return "rbac:" + userID.String() }

// Resolve retorna el snapshot del usuario, del cache si sigue vigente.
// Miss/expiración van al store; misses concurrentes del mismo usuario se
// colapsan en una sola consulta (singleflight).
func (r *Resolver) Resolve(ctx context.Context, userID repository.UserID) (*Snapshot, error) {
	key := cacheKey(userID)

	if b, ok := r.deps.Cache.Get(key); ok {
		var snap Snapshot
		if err := json.Unmarshal(b, &snap); err == nil {
			if r.deps.Now().Before(snap.ResolvedAt.Add(r.deps.TTL)) {
				metrics.RBACCacheTotal.WithLabelValues("hit").Inc()
				return &snap, nil
			}
			// Entrada vencida: nunca se consulta pasado el TTL.
			r.deps.Cache.Delete(key)
		}
	}
	metrics.RBACCacheTotal.WithLabelValues("miss").Inc()

	v, err, _ := r.sf.Do(key, func() (any, error) {
		roles, err := r.deps.Store.GetUserRoles(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("rbac: get roles: %w", err)
		}
		perms, err := r.deps.Store.GetUserPermissions(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("rbac: get permissions: %w", err)
		}
		snap := &Snapshot{
			Roles:       roles,
			Permissions: perms,
			ResolvedAt:  r.deps.Now().UTC(),
		}
		if b, err := json.Marshal(snap); err == nil {
			r.deps.Cache.Set(key, b, r.deps.TTL)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// HasRole: true si el usuario tiene algún rol admin global, o si su set
// de roles interseca required (semántica OR).
func (r *Resolver) HasRole(ctx context.Context, userID repository.UserID, required ...string) (bool, error) {
	snap, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	if hasAny(snap.Roles, r.deps.AdminRoles) {
		return true, nil
	}
	return hasAny(snap.Roles, required), nil
}

// HasPermission: true si el usuario tiene "*" o "manage:all", o si sus
// permisos intersecan required (semántica OR).
func (r *Resolver) HasPermission(ctx context.Context, userID repository.UserID, required ...string) (bool, error) {
	snap, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	if hasAny(snap.Permissions, []string{WildcardPermission, ManageAllPermission}) {
		return true, nil
	}
	return hasAny(snap.Permissions, required), nil
}

// CheckTeamAccess: admins globales y managers con read:all pasan siempre;
// el resto requiere membresía en el equipo (consulta directa, sin cache).
func (r *Resolver) CheckTeamAccess(ctx context.Context, userID repository.UserID, teamID string) (bool, error) {
	snap, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	if hasAny(snap.Roles, r.deps.AdminRoles) {
		return true, nil
	}
	if hasAny(snap.Roles, r.deps.ManagerRoles) && hasAny(snap.Permissions, []string{ReadAllPermission, WildcardPermission, ManageAllPermission}) {
		return true, nil
	}
	return r.deps.Teams.IsMember(ctx, userID, teamID)
}

// InvalidateUser borra la entrada de un usuario. Llamar tras cualquier
// mutación de sus roles; sin esto la staleness queda acotada por el TTL.
func (r *Resolver) InvalidateUser(userID repository.UserID) {
	r.deps.Cache.Delete(cacheKey(userID))
	logger.L().Debug("rbac cache invalidated", logger.Component("rbac"), logger.UserID(userID.String()))
}

// InvalidateAll limpia el cache completo (cambios masivos de esquema de roles).
func (r *Resolver) InvalidateAll() {
	r.deps.Cache.Flush()
	logger.L().Info("rbac cache flushed", logger.Component("rbac"))
}

// hasAny verifica intersección no vacía, case-insensitive.
func hasAny(haystack []string, needles []string) bool {
	if len(haystack) == 0 || len(needles) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(haystack))
	for _, v := range haystack {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[strings.ToLower(strings.TrimSpace(n))]; ok {
			return true
		}
	}
	return false
}
