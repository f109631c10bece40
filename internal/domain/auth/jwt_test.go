package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturador/internal/core/apperror"
)

func testUser(t *testing.T) *User {
	t.Helper()
	u, err := NewUser("maria@example.ec", "s3cret-pass")
	require.NoError(t, err)
	return u
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(JWTConfig{Secret: "test-secret", TokenTTL: time.Hour})
	u := testUser(t)

	token, expiresAt, err := svc.Generate(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, email, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, u.Email, email)
}

func TestJWT_WrongSecret(t *testing.T) {
	issuer := NewJWTService(JWTConfig{Secret: "secret-a"})
	verifier := NewJWTService(JWTConfig{Secret: "secret-b"})

	token, _, err := issuer.Generate(testUser(t))
	require.NoError(t, err)

	_, _, err = verifier.Validate(token)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestJWT_ExpiredToken(t *testing.T) {
	svc := NewJWTService(JWTConfig{Secret: "test-secret", TokenTTL: -time.Minute})

	token, _, err := svc.Generate(testUser(t))
	require.NoError(t, err)

	_, _, err = svc.Validate(token)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestJWT_Garbage(t *testing.T) {
	svc := NewJWTService(JWTConfig{Secret: "test-secret"})

	_, _, err := svc.Validate("not.a.token")
	require.Error(t, err)
	assert.Equal(t, 401, apperror.GetHTTPStatus(err))
}
