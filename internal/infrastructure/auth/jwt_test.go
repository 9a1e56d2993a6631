package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/auth"
)

func sign(t *testing.T, secret string, method jwt.SigningMethod, claims auth.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID string, expiresIn time.Duration) auth.Claims {
	now := time.Now()
	return auth.Claims{
		UserID:   userID,
		Username: "bob",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "splitledger",
			Audience:  jwt.ClaimStrings{"splitledger-api"},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
}

func TestJWTManagerRoundTrip(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)
	assert.Equal(t, time.Minute, manager.TokenDuration())

	token, err := manager.Generate(&domain.User{ID: "user-123", Username: "alice"})
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTManagerGenerateRequiresUser(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	_, err := manager.Generate(&domain.User{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = manager.Generate(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWTManagerVerifyRejects(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	foreignIssuer := validClaims("user-1", time.Minute)
	foreignIssuer.Issuer = "someone-else"

	wrongAudience := validClaims("user-1", time.Minute)
	wrongAudience.Audience = jwt.ClaimStrings{"billing"}

	noExpiry := validClaims("user-1", time.Minute)
	noExpiry.ExpiresAt = nil

	subjectMismatch := validClaims("user-1", time.Minute)
	subjectMismatch.Subject = "user-2"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "expired", token: sign(t, "secret", jwt.SigningMethodHS256, validClaims("user-1", -time.Second)), want: domain.ErrExpiredToken},
		{name: "wrong secret", token: sign(t, "other-secret", jwt.SigningMethodHS256, validClaims("user-1", time.Minute)), want: domain.ErrInvalidToken},
		{name: "other hmac algorithm", token: sign(t, "secret", jwt.SigningMethodHS512, validClaims("user-1", time.Minute)), want: domain.ErrInvalidToken},
		{name: "foreign issuer", token: sign(t, "secret", jwt.SigningMethodHS256, foreignIssuer), want: domain.ErrInvalidToken},
		{name: "wrong audience", token: sign(t, "secret", jwt.SigningMethodHS256, wrongAudience), want: domain.ErrInvalidToken},
		{name: "missing expiry", token: sign(t, "secret", jwt.SigningMethodHS256, noExpiry), want: domain.ErrInvalidToken},
		{name: "subject mismatch", token: sign(t, "secret", jwt.SigningMethodHS256, subjectMismatch), want: domain.ErrInvalidToken},
		{name: "missing user", token: sign(t, "secret", jwt.SigningMethodHS256, validClaims("", time.Minute)), want: domain.ErrInvalidToken},
		{name: "malformed", token: "not-a-token", want: domain.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
