package services

import (
	"context"
	"testing"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	service *authService
	codec   *claimsCodec
	clock   *fakeClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &fakeClock{now: codecEpoch}
	codec := newTestCodec("auth-secret-0123456789abcdef012345", clock)
	svc, err := NewAuthService(memory.NewMemoryAccountRepository(), codec, AuthConfig{
		CredentialTTL: time.Hour,
		BcryptCost:    bcrypt.MinCost,
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return &authFixture{service: svc.(*authService), codec: codec, clock: clock}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	account, err := f.service.Register(ctx, "  Ada@Example.com ", "Ada", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, domain.RoleKindEndUser, account.RoleKind)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)

	got, cred, err := f.service.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.True(t, codecEpoch.Add(time.Hour).Equal(cred.ExpiresAt))
	assert.Equal(t, time.UTC, cred.ExpiresAt.Location())

	claims, err := f.codec.Verify(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.SubjectID)
	assert.Equal(t, domain.EndUser{}, claims.Role)
}

func TestAuthService_RegisterRejectsInvalidInput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name, email, displayName, password string
	}{
		{"bad email", "not-an-email", "Ada", "correct-horse"},
		{"blank name", "ada@example.com", "  ", "correct-horse"},
		{"short password", "ada@example.com", "Ada", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(ctx, tt.email, tt.displayName, tt.password)
			assert.ErrorIs(t, err, ErrInvalidSubmission)
		})
	}

	_, err := f.service.Register(ctx, "ada@example.com", "Ada", "correct-horse")
	require.NoError(t, err)
	_, err = f.service.Register(ctx, "ADA@example.com", "Ada again", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthService_LoginFailuresLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.service.Register(ctx, "ada@example.com", "Ada", "correct-horse")
	require.NoError(t, err)

	_, _, wrongPassword := f.service.Login(ctx, "ada@example.com", "wrong-horse")
	_, _, unknownEmail := f.service.Login(ctx, "bob@example.com", "correct-horse")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_ProvisionCarriesRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		role domain.Role
	}{
		{"publisher", domain.Publisher{PublisherID: 42}},
		{"marketing", domain.Admin{Subtype: domain.AdminMarketing}},
		{"support", domain.Admin{Subtype: domain.AdminSupport}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := tt.name + "@example.com"
			_, err := f.service.Provision(ctx, domain.NewAccount{
				Email:       email,
				DisplayName: tt.name,
				Password:    "correct-horse",
				Role:        tt.role,
			})
			require.NoError(t, err)

			_, cred, err := f.service.Login(ctx, email, "correct-horse")
			require.NoError(t, err)
			claims, err := f.codec.Verify(cred.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.role, claims.Role)
		})
	}

	_, err := f.service.Provision(ctx, domain.NewAccount{
		Email: "nobody@example.com", DisplayName: "x", Password: "correct-horse",
		Role: domain.Publisher{},
	})
	assert.ErrorIs(t, err, ErrInvalidSubmission)

	_, err = f.service.Provision(ctx, domain.NewAccount{
		Email: "norole@example.com", DisplayName: "x", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestAuthService_RefreshReissues(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	account, err := f.service.Register(ctx, "ada@example.com", "Ada", "correct-horse")
	require.NoError(t, err)
	_, first, err := f.service.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	claims, err := f.codec.Verify(first.Token)
	require.NoError(t, err)

	second, err := f.service.Refresh(ctx, claims)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))

	refreshed, err := f.codec.Verify(second.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, refreshed.SubjectID)
	assert.NotEqual(t, claims.ID, refreshed.ID)

	_, err = f.service.Refresh(ctx, &domain.ClaimSet{SubjectID: 9999, Role: domain.EndUser{}})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ListAndGet(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	a, err := f.service.Register(ctx, "a@example.com", "A", "correct-horse")
	require.NoError(t, err)
	_, err = f.service.Register(ctx, "b@example.com", "B", "correct-horse")
	require.NoError(t, err)

	got, err := f.service.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	all, err := f.service.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.service.GetAccount(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestNewAuthService_RejectsZeroTTL(t *testing.T) {
	_, err := NewAuthService(memory.NewMemoryAccountRepository(), nil, AuthConfig{}, zap.NewNop().Sugar())
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
