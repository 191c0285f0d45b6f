package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentia/talentia-api/internal/app"
	cmem "github.com/talentia/talentia-api/internal/cache/memory"
	"github.com/talentia/talentia-api/internal/config"
	"github.com/talentia/talentia-api/internal/domain/repository"
	dto "github.com/talentia/talentia-api/internal/http/dto/auth"
	jwtx "github.com/talentia/talentia-api/internal/jwt"
	"github.com/talentia/talentia-api/internal/rbac"
	"github.com/talentia/talentia-api/internal/security/password"
	"github.com/talentia/talentia-api/internal/token"
)

const testSeed = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8"

// memStore implementa todos los repositorios del core en memoria, con la
// misma semántica que el store de Postgres.
type memStore struct {
	users map[repository.UserID]*repository.User
	roles map[repository.UserID][]string
	perms map[repository.UserID][]string
	teams map[string][]repository.UserID
	rows  []repository.RefreshToken
}

func (m *memStore) GetByIdentifier(_ context.Context, identifier string) (*repository.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, identifier) || u.Phone == identifier {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) GetByID(_ context.Context, id repository.UserID) (*repository.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) GetUserRoles(_ context.Context, uid repository.UserID) ([]string, error) {
	return m.roles[uid], nil
}

func (m *memStore) GetUserPermissions(_ context.Context, uid repository.UserID) ([]string, error) {
	return m.perms[uid], nil
}

func (m *memStore) AssignUserRoles(_ context.Context, uid repository.UserID, roles []string) error {
	m.roles[uid] = append(m.roles[uid], roles...)
	return nil
}

func (m *memStore) RemoveUserRoles(_ context.Context, uid repository.UserID, roles []string) error {
	drop := map[string]bool{}
	for _, r := range roles {
		drop[r] = true
	}
	kept := m.roles[uid][:0]
	for _, r := range m.roles[uid] {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	m.roles[uid] = kept
	return nil
}

func (m *memStore) IsMember(_ context.Context, uid repository.UserID, teamID string) (bool, error) {
	for _, member := range m.teams[teamID] {
		if member == uid {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, in repository.CreateRefreshTokenInput) error {
	m.rows = append(m.rows, repository.RefreshToken{
		ID:        in.ID,
		FamilyID:  in.FamilyID,
		UserID:    in.UserID,
		TokenHash: in.TokenHash,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: in.ExpiresAt,
	})
	return nil
}

func (m *memStore) ListComparable(context.Context) ([]repository.RefreshToken, error) {
	out := make([]repository.RefreshToken, 0, len(m.rows))
	for _, r := range m.rows {
		if time.Now().Before(r.ExpiresAt) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Rotate(ctx context.Context, oldID repository.TokenID, in repository.CreateRefreshTokenInput) error {
	for i := range m.rows {
		if m.rows[i].ID == oldID && m.rows[i].RevokedAt == nil {
			ts := time.Now().UTC()
			m.rows[i].RevokedAt = &ts
			return m.Create(ctx, in)
		}
	}
	return repository.ErrTokenClaimed
}

func (m *memStore) RevokeAllByUser(_ context.Context, uid repository.UserID) (int, error) {
	n := 0
	for i := range m.rows {
		if m.rows[i].UserID == uid && m.rows[i].RevokedAt == nil {
			ts := time.Now().UTC()
			m.rows[i].RevokedAt = &ts
			n++
		}
	}
	return n, nil
}

func (m *memStore) RevokeFamily(_ context.Context, fid repository.FamilyID) (int, error) {
	n := 0
	for i := range m.rows {
		if m.rows[i].FamilyID == fid && m.rows[i].RevokedAt == nil {
			ts := time.Now().UTC()
			m.rows[i].RevokedAt = &ts
			n++
		}
	}
	return n, nil
}

type apiFixture struct {
	router http.Handler
	store  *memStore
	hasher *password.Argon2id
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	hasher := password.NewArgon2id()
	hasher.P.Memory = 8 * 1024 // tests rápidos

	hash := func(plain string) string {
		h, err := hasher.Hash(plain)
		require.NoError(t, err)
		return h
	}

	store := &memStore{
		users: map[repository.UserID]*repository.User{
			"u-rec":  {ID: "u-rec", Email: "rec@talentia.app", FullName: "Rita Recruiter", PasswordHash: hash("rec-pass")},
			"u-boss": {ID: "u-boss", Email: "boss@talentia.app", FullName: "Bea Boss", PasswordHash: hash("boss-pass")},
			"u-off":  {ID: "u-off", Email: "off@talentia.app", PasswordHash: hash("off-pass"), Disabled: true},
		},
		roles: map[repository.UserID][]string{
			"u-rec":  {"recruiter"},
			"u-boss": {"admin"},
		},
		perms: map[repository.UserID][]string{
			"u-rec":  {"read:candidates"},
			"u-boss": {"manage:all"},
		},
		teams: map[string][]repository.UserID{
			"team-ba": {"u-rec"},
		},
	}

	issuer, err := jwtx.NewIssuerFromSeed(cfg.JWT.Issuer, cfg.JWT.Audience, testSeed, cfg.AccessTTL())
	require.NoError(t, err)

	resolver := rbac.NewResolver(rbac.Deps{
		Store: store,
		Teams: store,
		Cache: cmem.New(time.Minute),
		TTL:   cfg.RBACCacheTTL(),
	})

	container := &app.Container{
		Cfg:      cfg,
		Users:    store,
		RBAC:     store,
		Teams:    store,
		Tokens:   token.NewService(token.Deps{Ledger: store, Users: store, Issuer: issuer, RefreshTTL: cfg.RefreshTTL()}),
		Resolver: resolver,
		Issuer:   issuer,
		Hasher:   hasher,
		Ready:    func(context.Context) error { return nil },
	}

	return &apiFixture{router: NewRouter(container), store: store, hasher: hasher}
}

func (fx *apiFixture) do(t *testing.T, method, path, body string, mut ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, m := range mut {
		m(req)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func (fx *apiFixture) login(t *testing.T, identifier, pass string) (dto.TokenResponse, *http.Cookie) {
	t.Helper()
	rec := fx.do(t, http.MethodPost, "/v1/auth/login",
		`{"identifier":"`+identifier+`","password":"`+pass+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "talentia_refresh" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	return resp, cookie
}

func withBearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func TestLogin(t *testing.T) {
	fx := newAPIFixture(t)

	t.Run("credenciales válidas", func(t *testing.T) {
		resp, cookie := fx.login(t, "rec@talentia.app", "rec-pass")
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Greater(t, resp.ExpiresIn, int64(0))
		assert.Equal(t, "u-rec", resp.User.ID)

		// la cookie es HTTP-only y scoped al grupo de auth
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/v1/auth", cookie.Path)
		assert.Equal(t, resp.RefreshToken, cookie.Value)

		// el ledger guarda hash, nunca el secreto en claro
		for _, row := range fx.store.rows {
			assert.NotEqual(t, resp.RefreshToken, row.TokenHash)
		}
	})

	t.Run("password incorrecta, usuario inexistente y deshabilitado responden igual", func(t *testing.T) {
		for _, tc := range [][2]string{
			{"rec@talentia.app", "mala"},
			{"nadie@talentia.app", "rec-pass"},
			{"off@talentia.app", "off-pass"},
		} {
			rec := fx.do(t, http.MethodPost, "/v1/auth/login",
				`{"identifier":"`+tc[0]+`","password":"`+tc[1]+`"}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid_credentials")
		}
	})

	t.Run("email es case-insensitive", func(t *testing.T) {
		resp, _ := fx.login(t, "REC@talentia.app", "rec-pass")
		assert.Equal(t, "u-rec", resp.User.ID)
	})

	t.Run("payload incompleto responde 400", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/v1/auth/login", `{"identifier":"rec@talentia.app"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMe(t *testing.T) {
	fx := newAPIFixture(t)
	resp, _ := fx.login(t, "rec@talentia.app", "rec-pass")

	t.Run("con token responde identidad y RBAC resueltos", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/auth/me", "", withBearer(resp.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)

		var me dto.MeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
		assert.Equal(t, "u-rec", me.ID)
		assert.Equal(t, []string{"recruiter"}, me.Roles)
		assert.Equal(t, []string{"read:candidates"}, me.Permissions)
	})

	t.Run("sin token responde 401", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/auth/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRefreshFlow(t *testing.T) {
	fx := newAPIFixture(t)
	_, cookie := fx.login(t, "rec@talentia.app", "rec-pass")

	// rotación exitosa: tokens nuevos y cookie nueva
	rec := fx.do(t, http.MethodPost, "/v1/auth/refresh", "", withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var second dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.NotEqual(t, cookie.Value, second.RefreshToken)

	var newCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "talentia_refresh" {
			newCookie = c
		}
	}
	require.NotNil(t, newCookie)
	assert.Equal(t, second.RefreshToken, newCookie.Value)

	// reusar el secreto viejo: 401 y cae la familia entera
	rec = fx.do(t, http.MethodPost, "/v1/auth/refresh", "", withCookie(cookie))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_refresh")

	// el token que era vigente quedó revocado con la familia
	rec = fx.do(t, http.MethodPost, "/v1/auth/refresh", "", withCookie(newCookie))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	fx := newAPIFixture(t)
	rec := fx.do(t, http.MethodPost, "/v1/auth/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_refresh")
}

func TestLogout(t *testing.T) {
	fx := newAPIFixture(t)
	resp, cookie := fx.login(t, "rec@talentia.app", "rec-pass")
	_, _ = fx.login(t, "rec@talentia.app", "rec-pass") // segunda sesión

	rec := fx.do(t, http.MethodPost, "/v1/auth/logout", "", withBearer(resp.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var out dto.LogoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Revoked)

	// la cookie de respuesta borra el refresh token del browser
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[len(cookies)-1].MaxAge)

	// ningún refresh del usuario sigue vivo
	rec = fx.do(t, http.MethodPost, "/v1/auth/refresh", "", withCookie(cookie))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout sin token: 401
	rec = fx.do(t, http.MethodPost, "/v1/auth/logout", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRBACEndpoints(t *testing.T) {
	fx := newAPIFixture(t)
	boss, _ := fx.login(t, "boss@talentia.app", "boss-pass")
	recr, _ := fx.login(t, "rec@talentia.app", "rec-pass")

	t.Run("sin manage:all responde 403", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/admin/rbac/users/u-rec", "", withBearer(recr.AccessToken))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("sin token responde 401", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/admin/rbac/users/u-rec", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("lectura de roles y permisos", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/admin/rbac/users/u-rec", "", withBearer(boss.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "recruiter")
		assert.Contains(t, rec.Body.String(), "read:candidates")
	})

	t.Run("asignar roles invalida el cache del usuario", func(t *testing.T) {
		// calentar el cache del recruiter
		me := fx.do(t, http.MethodGet, "/v1/auth/me", "", withBearer(recr.AccessToken))
		require.Equal(t, http.StatusOK, me.Code)

		rec := fx.do(t, http.MethodPost, "/v1/admin/rbac/users/u-rec/roles",
			`{"roles":["manager"]}`, withBearer(boss.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// el cambio aplica de inmediato, sin esperar el TTL ni relogin
		me = fx.do(t, http.MethodGet, "/v1/auth/me", "", withBearer(recr.AccessToken))
		require.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "manager")
	})

	t.Run("quitar roles", func(t *testing.T) {
		rec := fx.do(t, http.MethodDelete, "/v1/admin/rbac/users/u-rec/roles",
			`{"roles":["manager"]}`, withBearer(boss.AccessToken))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "manager")
	})

	t.Run("invalidate cache requiere user_id o all", func(t *testing.T) {
		rec := fx.do(t, http.MethodPost, "/v1/admin/rbac/cache/invalidate", `{}`, withBearer(boss.AccessToken))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = fx.do(t, http.MethodPost, "/v1/admin/rbac/cache/invalidate", `{"all":true}`, withBearer(boss.AccessToken))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestTeamAccessEndpoint(t *testing.T) {
	fx := newAPIFixture(t)
	recr, _ := fx.login(t, "rec@talentia.app", "rec-pass")
	boss, _ := fx.login(t, "boss@talentia.app", "boss-pass")

	t.Run("miembro accede", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/teams/team-ba/access", "", withBearer(recr.AccessToken))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("no miembro responde 403", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/teams/team-mvd/access", "", withBearer(recr.AccessToken))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("admin global accede a cualquier equipo", func(t *testing.T) {
		rec := fx.do(t, http.MethodGet, "/v1/teams/team-mvd/access", "", withBearer(boss.AccessToken))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = fx.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = fx.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/v1/nada", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")

	rec = fx.do(t, http.MethodGet, "/v1/auth/login", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
