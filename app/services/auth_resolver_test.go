package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/models"
	"github.com/jphish/campaign-service/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key")

type mockSessionStore struct {
	tokens map[string]bool
	calls  int
}

func (m *mockSessionStore) Exists(ctx context.Context, token string) (bool, error) {
	m.calls++
	return m.tokens[token], nil
}

type mockAdminRepo struct {
	admins map[string]*models.Admin
	calls  int
}

func (m *mockAdminRepo) ByID(ctx context.Context, id uint) (*models.Admin, error) {
	return nil, nil
}

func (m *mockAdminRepo) ByFilter(ctx context.Context, filter models.AdminFilter, orderBy string, limit, offset int) ([]*models.Admin, error) {
	return nil, nil
}

func (m *mockAdminRepo) Save(ctx context.Context, admin *models.Admin) error {
	return nil
}

func (m *mockAdminRepo) SaveBatch(ctx context.Context, admins []*models.Admin) error {
	return nil
}

func (m *mockAdminRepo) ByEmail(ctx context.Context, email string) (*models.Admin, error) {
	m.calls++
	return m.admins[email], nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func clientClaims(id float64) jwt.MapClaims {
	return jwt.MapClaims{
		"role": "CLIENT",
		"id":   id,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestLocalAuthResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("ClientToken", func(t *testing.T) {
		sessions := &mockSessionStore{tokens: map[string]bool{}}
		resolver := NewLocalAuthResolver(sessions, &mockAdminRepo{}, testSecret)

		identity, err := resolver.Resolve(ctx, signToken(t, clientClaims(5)), utils.ClearanceClient)
		require.NoError(t, err)
		assert.False(t, identity.Admin)
		assert.Equal(t, uint(5), identity.ClientID)
		assert.True(t, identity.MayAccess(5))
		assert.False(t, identity.MayAccess(9))
		// Client resolution never touches the session store
		assert.Zero(t, sessions.calls)
	})

	t.Run("ClientTokenWrongRole", func(t *testing.T) {
		resolver := NewLocalAuthResolver(&mockSessionStore{}, &mockAdminRepo{}, testSecret)

		claims := clientClaims(5)
		claims["role"] = "AUDITOR"
		_, err := resolver.Resolve(ctx, signToken(t, claims), utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("ClientTokenBadSignature", func(t *testing.T) {
		resolver := NewLocalAuthResolver(&mockSessionStore{}, &mockAdminRepo{}, []byte("other-key"))

		_, err := resolver.Resolve(ctx, signToken(t, clientClaims(5)), utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("ClientTokenExpired", func(t *testing.T) {
		resolver := NewLocalAuthResolver(&mockSessionStore{}, &mockAdminRepo{}, testSecret)

		claims := clientClaims(5)
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := resolver.Resolve(ctx, signToken(t, claims), utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("AdminToken", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"email": "root@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		sessions := &mockSessionStore{tokens: map[string]bool{token: true}}
		admins := &mockAdminRepo{admins: map[string]*models.Admin{
			"root@example.com": {ID: 1, Email: "root@example.com"},
		}}
		resolver := NewLocalAuthResolver(sessions, admins, testSecret)

		identity, err := resolver.Resolve(ctx, token, utils.ClearanceAdmin)
		require.NoError(t, err)
		assert.True(t, identity.Admin)
		assert.True(t, identity.MayAccess(5))
		assert.True(t, identity.MayAccess(9))
		assert.Equal(t, uint(0), identity.StorageClientID())
	})

	t.Run("AdminTokenNoSession", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"email": "root@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		sessions := &mockSessionStore{tokens: map[string]bool{}}
		admins := &mockAdminRepo{admins: map[string]*models.Admin{
			"root@example.com": {ID: 1, Email: "root@example.com"},
		}}
		resolver := NewLocalAuthResolver(sessions, admins, testSecret)

		_, err := resolver.Resolve(ctx, token, utils.ClearanceAdmin)
		assert.ErrorIs(t, err, ErrUnauthorized)
		// The directory is never consulted for a dead session
		assert.Zero(t, admins.calls)
	})

	t.Run("AdminTokenUnknownEmail", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"email": "ghost@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		sessions := &mockSessionStore{tokens: map[string]bool{token: true}}
		resolver := NewLocalAuthResolver(sessions, &mockAdminRepo{}, testSecret)

		_, err := resolver.Resolve(ctx, token, utils.ClearanceAdmin)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("UnknownClearanceRejectedWithoutLookups", func(t *testing.T) {
		sessions := &mockSessionStore{tokens: map[string]bool{}}
		admins := &mockAdminRepo{}
		resolver := NewLocalAuthResolver(sessions, admins, testSecret)

		_, err := resolver.Resolve(ctx, signToken(t, clientClaims(5)), "Superuser")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Zero(t, sessions.calls)
		assert.Zero(t, admins.calls)
	})

	t.Run("EmptyToken", func(t *testing.T) {
		resolver := NewLocalAuthResolver(&mockSessionStore{}, &mockAdminRepo{}, testSecret)

		_, err := resolver.Resolve(ctx, "", utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

type fakeProvider struct {
	clientID    uint
	err         error
	validations int
}

func (p *fakeProvider) ValidateToken(ctx context.Context, token, clearance string) (uint, error) {
	p.validations++
	return p.clientID, p.err
}

func (p *fakeProvider) GetUserGroup(ctx context.Context, id uint, token, clearance string) (*dto.UserGroup, error) {
	return nil, nil
}

func (p *fakeProvider) GetEmailTemplate(ctx context.Context, id uint, token, clearance string) (*dto.EmailTemplate, error) {
	return nil, nil
}

func (p *fakeProvider) GetLandingPageTemplate(ctx context.Context, id uint, token, clearance string) (*dto.LandingPageTemplate, error) {
	return nil, nil
}

func (p *fakeProvider) UpdateLandingPageURL(ctx context.Context, id uint, pageURL, token, clearance string) error {
	return nil
}

func (p *fakeProvider) GetSendingProfile(ctx context.Context, id uint, token, clearance string) (*dto.SendingProfile, error) {
	return nil, nil
}

func TestRemoteAuthResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("ClientResolved", func(t *testing.T) {
		resolver := NewRemoteAuthResolver(&fakeProvider{clientID: 7})

		identity, err := resolver.Resolve(ctx, "token", utils.ClearanceClient)
		require.NoError(t, err)
		assert.Equal(t, uint(7), identity.ClientID)
		assert.False(t, identity.Admin)
	})

	t.Run("AdminResolved", func(t *testing.T) {
		resolver := NewRemoteAuthResolver(&fakeProvider{clientID: 0})

		identity, err := resolver.Resolve(ctx, "token", utils.ClearanceAdmin)
		require.NoError(t, err)
		assert.True(t, identity.Admin)
	})

	t.Run("AdminClearanceWithClientToken", func(t *testing.T) {
		resolver := NewRemoteAuthResolver(&fakeProvider{clientID: 7})

		_, err := resolver.Resolve(ctx, "token", utils.ClearanceAdmin)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("UpstreamRejection", func(t *testing.T) {
		resolver := NewRemoteAuthResolver(&fakeProvider{err: ErrUnauthorized})

		_, err := resolver.Resolve(ctx, "token", utils.ClearanceClient)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("UnknownClearance", func(t *testing.T) {
		provider := &fakeProvider{clientID: 7}
		resolver := NewRemoteAuthResolver(provider)

		_, err := resolver.Resolve(ctx, "token", "Superuser")
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Zero(t, provider.validations)
	})
}
