package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

type mockAuthUserRepo struct {
	users map[string]*models.User
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func signTestToken(t *testing.T, secret string, claims models.JWTClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, zap.NewNop(), AuthConfig{AccessTokenSecret: "secret"})

	signed := signTestToken(t, "secret", models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, zap.NewNop(), AuthConfig{AccessTokenSecret: "secret"})

	signed := signTestToken(t, "other", models.JWTClaims{UserID: "u1", Role: models.RoleTeacher})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)
}

func TestValidateTokenUnknownRole(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, zap.NewNop(), AuthConfig{AccessTokenSecret: "secret"})

	signed := signTestToken(t, "secret", models.JWTClaims{
		UserID: "u1",
		Role:   models.Role("SUPERUSER"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(&mockAuthUserRepo{}, zap.NewNop(), AuthConfig{AccessTokenSecret: "secret"})

	signed := signTestToken(t, "secret", models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleTeacher,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)
}

func TestResolveUser(t *testing.T) {
	repo := &mockAuthUserRepo{users: map[string]*models.User{"u1": {ID: "u1", Role: models.RoleTeacher}}}
	svc := NewAuthService(repo, zap.NewNop(), AuthConfig{AccessTokenSecret: "secret"})

	user, err := svc.ResolveUser(context.Background(), &models.JWTClaims{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = svc.ResolveUser(context.Background(), &models.JWTClaims{UserID: "gone"})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrors.FromError(err).Code)
}
