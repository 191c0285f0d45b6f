package rbac

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentia/talentia-api/internal/cache/memory"
	"github.com/talentia/talentia-api/internal/domain/repository"
)

type fakeRBACStore struct {
	roles map[repository.UserID][]string
	perms map[repository.UserID][]string

	// queries cuenta idas al store: el cache se mide con esto
	queries int
	fail    error
}

func (f *fakeRBACStore) GetUserRoles(_ context.Context, uid repository.UserID) ([]string, error) {
	f.queries++
	if f.fail != nil {
		return nil, f.fail
	}
	return f.roles[uid], nil
}

func (f *fakeRBACStore) GetUserPermissions(_ context.Context, uid repository.UserID) ([]string, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.perms[uid], nil
}

func (f *fakeRBACStore) AssignUserRoles(_ context.Context, uid repository.UserID, roles []string) error {
	f.roles[uid] = append(f.roles[uid], roles...)
	return nil
}

func (f *fakeRBACStore) RemoveUserRoles(_ context.Context, uid repository.UserID, roles []string) error {
	drop := map[string]bool{}
	for _, r := range roles {
		drop[r] = true
	}
	kept := f.roles[uid][:0]
	for _, r := range f.roles[uid] {
		if !drop[r] {
			kept = append(kept, r)
		}
	}
	f.roles[uid] = kept
	return nil
}

type fakeTeams struct {
	members map[string][]repository.UserID
	calls   int
}

func (f *fakeTeams) IsMember(_ context.Context, uid repository.UserID, teamID string) (bool, error) {
	f.calls++
	for _, m := range f.members[teamID] {
		if m == uid {
			return true, nil
		}
	}
	return false, nil
}

type resolverFixture struct {
	r     *Resolver
	store *fakeRBACStore
	teams *fakeTeams
	now   time.Time
}

func newResolverFixture() *resolverFixture {
	fx := &resolverFixture{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	fx.store = &fakeRBACStore{
		roles: map[repository.UserID][]string{
			"boss":    {"ceo"},
			"mgr":     {"manager"},
			"mgr-all": {"manager"},
			"rec":     {"recruiter"},
		},
		perms: map[repository.UserID][]string{
			"boss":    {"*"},
			"mgr":     {"read:candidates", "write:candidates"},
			"mgr-all": {"read:all", "read:candidates"},
			"rec":     {"read:candidates"},
		},
	}
	fx.teams = &fakeTeams{members: map[string][]repository.UserID{
		"team-ba": {"rec", "mgr"},
	}}
	fx.r = NewResolver(Deps{
		Store: fx.store,
		Teams: fx.teams,
		Cache: memory.New(time.Minute),
		TTL:   time.Minute,
		Now:   func() time.Time { return fx.now },
	})
	return fx
}

func TestResolveCachesSnapshot(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	snap, err := fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)
	assert.Equal(t, []string{"recruiter"}, snap.Roles)
	assert.Equal(t, []string{"read:candidates"}, snap.Permissions)
	assert.Equal(t, 1, fx.store.queries)

	// dentro del TTL: ni una consulta más
	fx.now = fx.now.Add(59 * time.Second)
	_, err = fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)
	assert.Equal(t, 1, fx.store.queries)
}

func TestResolveRefetchesAfterTTL(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	_, err := fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)

	fx.store.roles["rec"] = []string{"recruiter", "manager"}
	fx.now = fx.now.Add(61 * time.Second)

	snap, err := fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)
	assert.Equal(t, 2, fx.store.queries)
	assert.Contains(t, snap.Roles, "manager")
}

func TestInvalidateUserForcesRefetch(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	_, err := fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)

	fx.store.roles["rec"] = []string{"viewer"}
	fx.r.InvalidateUser("rec")

	snap, err := fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, snap.Roles)
	assert.Equal(t, 2, fx.store.queries)
}

func TestInvalidateAll(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	_, err := fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)
	_, err = fx.r.Resolve(ctx, "mgr")
	require.NoError(t, err)
	require.Equal(t, 2, fx.store.queries)

	fx.r.InvalidateAll()
	_, err = fx.r.Resolve(ctx, "rec")
	require.NoError(t, err)
	assert.Equal(t, 3, fx.store.queries)
}

func TestResolvePropagatesStoreError(t *testing.T) {
	fx := newResolverFixture()
	fx.store.fail = errors.New("db caída")

	_, err := fx.r.Resolve(context.Background(), "rec")
	require.Error(t, err)
}

func TestHasRole(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	ok, err := fx.r.HasRole(ctx, "rec", "recruiter")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.r.HasRole(ctx, "rec", "manager")
	require.NoError(t, err)
	assert.False(t, ok)

	// OR: alcanza con uno
	ok, err = fx.r.HasRole(ctx, "rec", "manager", "recruiter")
	require.NoError(t, err)
	assert.True(t, ok)

	// shortcut admin: el ceo pasa cualquier chequeo de rol
	ok, err = fx.r.HasRole(ctx, "boss", "recruiter")
	require.NoError(t, err)
	assert.True(t, ok)

	// case-insensitive
	ok, err = fx.r.HasRole(ctx, "rec", "RECRUITER")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermission(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	ok, err := fx.r.HasPermission(ctx, "rec", "read:candidates")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.r.HasPermission(ctx, "rec", "write:candidates")
	require.NoError(t, err)
	assert.False(t, ok)

	// wildcard pasa todo
	ok, err = fx.r.HasPermission(ctx, "boss", "write:offers")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermissionManageAllShortcut(t *testing.T) {
	fx := newResolverFixture()
	fx.store.perms["ops"] = []string{ManageAllPermission}
	fx.store.roles["ops"] = []string{"ops"}

	ok, err := fx.r.HasPermission(context.Background(), "ops", "write:candidates")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckTeamAccess(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	// miembro directo
	ok, err := fx.r.CheckTeamAccess(ctx, "rec", "team-ba")
	require.NoError(t, err)
	assert.True(t, ok)

	// no miembro, sin overrides
	ok, err = fx.r.CheckTeamAccess(ctx, "rec", "team-mvd")
	require.NoError(t, err)
	assert.False(t, ok)

	// manager sin read:all NO tiene pase libre
	ok, err = fx.r.CheckTeamAccess(ctx, "mgr", "team-mvd")
	require.NoError(t, err)
	assert.False(t, ok)

	// manager + read:all pasa sin consultar membresía
	calls := fx.teams.calls
	ok, err = fx.r.CheckTeamAccess(ctx, "mgr-all", "team-mvd")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, calls, fx.teams.calls)

	// admin global pasa siempre
	ok, err = fx.r.CheckTeamAccess(ctx, "boss", "team-mvd")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckTeamAccessNotCached(t *testing.T) {
	fx := newResolverFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fx.r.CheckTeamAccess(ctx, "rec", "team-ba")
		require.NoError(t, err)
	}
	// la membresía se consulta fresca en cada chequeo
	assert.Equal(t, 3, fx.teams.calls)
}
