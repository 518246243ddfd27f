package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vaultEnvelopes/internal/database"
)

type memoryAdmins struct {
	byName map[string]database.Admin
	nextID uint
}

func newMemoryAdmins() *memoryAdmins {
	return &memoryAdmins{byName: map[string]database.Admin{}}
}

func (m *memoryAdmins) FindByUsername(_ context.Context, username string) (database.Admin, error) {
	admin, ok := m.byName[username]
	if !ok {
		return database.Admin{}, database.ErrNotFound
	}
	return admin, nil
}

func (m *memoryAdmins) FindByID(_ context.Context, id uint) (database.Admin, error) {
	for _, admin := range m.byName {
		if admin.ID == id {
			return admin, nil
		}
	}
	return database.Admin{}, database.ErrNotFound
}

func (m *memoryAdmins) Create(_ context.Context, username, hash string) (database.Admin, error) {
	m.nextID++
	admin := database.Admin{Model: gorm.Model{ID: m.nextID}, Username: username, PasswordHash: hash}
	m.byName[username] = admin
	return admin, nil
}

func newTestAuthenticator(t *testing.T, admins AdminRepository, provision Provisioning) *Authenticator {
	t.Helper()
	tokens, err := NewAuthService("secret", 7*24*time.Hour)
	require.NoError(t, err)
	return NewAuthenticator(admins, tokens, provision, nil)
}

func TestLogin_ExistingAdmin(t *testing.T) {
	ctx := context.Background()
	admins := newMemoryAdmins()
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	_, err = admins.Create(ctx, "root", hash)
	require.NoError(t, err)

	a := newTestAuthenticator(t, admins, Provisioning{})

	session, err := a.Login(ctx, "root", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "7d", session.ExpiresIn)
	assert.Equal(t, "root", session.Admin.Username)

	verified, err := a.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Admin.ID, verified.ID)

	_, err = a.Login(ctx, "root", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_AutoProvision(t *testing.T) {
	ctx := context.Background()
	admins := newMemoryAdmins()
	a := newTestAuthenticator(t, admins, Provisioning{Username: "admin", Password: "admin123", Enabled: true})

	_, err := a.Login(ctx, "admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, admins.byName)

	session, err := a.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Admin.Username)
	require.Contains(t, admins.byName, "admin")
	assert.True(t, CheckPasswordHash("admin123", admins.byName["admin"].PasswordHash))

	// 第二次登录走普通校验
	_, err = a.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Len(t, admins.byName, 1)
}

func TestLogin_AutoProvisionDisabled(t *testing.T) {
	a := newTestAuthenticator(t, newMemoryAdmins(), Provisioning{Username: "admin", Password: "admin123"})
	_, err := a.Login(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_EmptyEnvCredentialsNeverMatch(t *testing.T) {
	a := newTestAuthenticator(t, newMemoryAdmins(), Provisioning{Enabled: true})
	_, err := a.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify_UnknownAdmin(t *testing.T) {
	admins := newMemoryAdmins()
	a := newTestAuthenticator(t, admins, Provisioning{})
	token, err := a.tokens.GenerateToken(99)
	require.NoError(t, err)

	_, err = a.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
