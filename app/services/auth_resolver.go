package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jphish/campaign-service/repository"
	"github.com/jphish/campaign-service/utils"
)

// Auth resolver error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const clientRoleClaim = "CLIENT"

// AuthResolver turns a raw bearer token and its declared clearance level
// into a tenant Identity. Admin clearance resolves to the wildcard admin
// identity, Client clearance to one tenant. Any other clearance, a missing
// token, or a token that fails verification yields ErrUnauthorized without
// touching any backing store.
type AuthResolver interface {
	Resolve(ctx context.Context, token, clearance string) (Identity, error)
}

type localAuthResolver struct {
	sessions  SessionStore
	adminRepo repository.AdminRepository
	secretKey []byte
}

// NewLocalAuthResolver returns an AuthResolver that verifies tokens
// in-process: admin tokens against the session store plus the admin
// directory, client tokens by HMAC signature check.
func NewLocalAuthResolver(sessions SessionStore, adminRepo repository.AdminRepository, secretKey []byte) AuthResolver {
	return &localAuthResolver{
		sessions:  sessions,
		adminRepo: adminRepo,
		secretKey: secretKey,
	}
}

func (r *localAuthResolver) Resolve(ctx context.Context, token, clearance string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	switch clearance {
	case utils.ClearanceAdmin:
		return r.resolveAdmin(ctx, token)
	case utils.ClearanceClient:
		return r.resolveClient(token)
	default:
		return Identity{}, ErrUnauthorized
	}
}

func (r *localAuthResolver) resolveAdmin(ctx context.Context, token string) (Identity, error) {
	live, err := r.sessions.Exists(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if !live {
		return Identity{}, ErrUnauthorized
	}

	claims, err := r.parseClaims(token)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return Identity{}, ErrUnauthorized
	}

	admin, err := r.adminRepo.ByEmail(ctx, email)
	if err != nil {
		return Identity{}, err
	}
	if admin == nil {
		return Identity{}, ErrUnauthorized
	}
	return AdminIdentity(), nil
}

func (r *localAuthResolver) resolveClient(token string) (Identity, error) {
	claims, err := r.parseClaims(token)
	if err != nil {
		return Identity{}, err
	}

	role, ok := claims["role"].(string)
	if !ok || role != clientRoleClaim {
		return Identity{}, ErrUnauthorized
	}
	clientID, ok := claims["id"].(float64)
	if !ok || clientID <= 0 {
		return Identity{}, ErrTokenInvalid
	}
	return ClientIdentity(uint(clientID)), nil
}

func (r *localAuthResolver) parseClaims(token string) (jwt.MapClaims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

type remoteAuthResolver struct {
	provider ResourceProvider
}

// NewRemoteAuthResolver returns an AuthResolver that delegates token
// verification to the phish server's validateToken endpoint. A resolved
// client id of zero is the admin wildcard.
func NewRemoteAuthResolver(provider ResourceProvider) AuthResolver {
	return &remoteAuthResolver{provider: provider}
}

func (r *remoteAuthResolver) Resolve(ctx context.Context, token, clearance string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	if clearance != utils.ClearanceAdmin && clearance != utils.ClearanceClient {
		return Identity{}, ErrUnauthorized
	}

	clientID, err := r.provider.ValidateToken(ctx, token, clearance)
	if err != nil {
		return Identity{}, err
	}
	if clearance == utils.ClearanceAdmin {
		if clientID != 0 {
			return Identity{}, ErrUnauthorized
		}
		return AdminIdentity(), nil
	}
	if clientID == 0 {
		return Identity{}, ErrUnauthorized
	}
	return ClientIdentity(clientID), nil
}
