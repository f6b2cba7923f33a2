package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	byEmail map[string]*User
	byName  map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: map[string]*User{}, byName: map[string]*User{}}
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byName[username]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) Insert(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[u.Email] = u
	r.byName[u.Username] = u
	return nil
}

func newTestService() *Service {
	return &Service{Repo: newMemRepo()}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name                      string
		username, email, password string
		wantErr                   string
	}{
		{"short username", "ab", "a@b.com", "secret1", "Username must be between 3 and 20 characters."},
		{"long username", "abcdefghijklmnopqrstu", "a@b.com", "secret1", "Username must be between 3 and 20 characters."},
		{"bad email", "alice", "not-an-email", "secret1", "Invalid email address."},
		{"short password", "alice", "alice@campus.edu", "five5", "Password must be at least 6 characters."},
		{"reserved admin", "alice", "admin@biterush.com", "secret1", "This email address is reserved."},
		{"reserved vendor", "alice", "Vendor@Biterush.com", "secret1", "This email address is reserved."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := svc.Register(ctx, c.username, c.email, c.password)
			assert.False(t, res.Success)
			assert.Equal(t, c.wantErr, res.Error)
			assert.Nil(t, res.User)
		})
	}
}

func TestRegisterAndLoginRoundtrip(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	res := svc.Register(ctx, " alice ", " Alice@Campus.EDU ", "secret1")
	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.User)
	assert.Equal(t, "alice", res.User.Username, "whitespace trimmed")
	assert.Equal(t, "alice@campus.edu", res.User.Email, "email lowercased")
	assert.Equal(t, RoleUser, res.User.Role)
	assert.NotEmpty(t, res.User.ID)

	login := svc.Login(ctx, "alice@campus.edu", "secret1")
	require.True(t, login.Success, login.Error)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	require.True(t, svc.Register(ctx, "alice", "alice@campus.edu", "secret1").Success)

	res := svc.Register(ctx, "alice2", "alice@campus.edu", "secret1")
	assert.Equal(t, "Email (alice@campus.edu) already exists.", res.Error)

	res = svc.Register(ctx, "alice", "other@campus.edu", "secret1")
	assert.Equal(t, "Username (alice) already exists.", res.Error)
}

func TestLoginFailureMessageIsUniform(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	require.True(t, svc.Register(ctx, "alice", "alice@campus.edu", "secret1").Success)

	unknown := svc.Login(ctx, "nobody@campus.edu", "secret1")
	wrongPass := svc.Login(ctx, "alice@campus.edu", "wrong-password")

	assert.False(t, unknown.Success)
	assert.False(t, wrongPass.Success)
	assert.Equal(t, "Invalid email or password.", unknown.Error)
	assert.Equal(t, unknown.Error, wrongPass.Error, "enumeration-safe: same message either way")
}

func TestProfileNeverCarriesHash(t *testing.T) {
	svc := newTestService()
	res := svc.Register(context.Background(), "alice", "alice@campus.edu", "secret1")
	require.True(t, res.Success)
	// Profile is a separate type without the hash field; the stored user keeps it.
	u, err := svc.Repo.FindByEmail(context.Background(), "alice@campus.edu")
	require.NoError(t, err)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestSeedCreatesDemoAccounts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	want := map[string]Role{
		"superadmin@biterush.com": RoleSuperAdmin,
		"admin@biterush.com":      RoleAdmin,
		"vendor@biterush.com":     RoleVendor,
	}
	for email, role := range want {
		u, err := svc.Repo.FindByEmail(ctx, email)
		require.NoError(t, err, email)
		assert.Equal(t, role, u.Role)
	}

	// idempotent
	require.NoError(t, svc.Seed(ctx))
	login := svc.Login(ctx, "superadmin@biterush.com", "superpass")
	require.True(t, login.Success, login.Error)
	assert.Equal(t, RoleSuperAdmin, login.User.Role)
}

func TestParseRoleDefaultsToUser(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleSuperAdmin, ParseRole("superAdmin"))
	assert.Equal(t, RoleVendor, ParseRole("vendor"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUser, ParseRole("root"))
	assert.Equal(t, RoleUser, ParseRole(""))
}
