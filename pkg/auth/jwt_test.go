package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
)

func testManager() *JWTManager {
	return NewJWTManager(Config{
		Secret:    "test-secret",
		Issuer:    "dangdang-auth",
		AccessTTL: time.Hour,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	m := testManager()

	token, err := m.GenerateToken("user-1", "Mina", middleware.RoleCustomer)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Mina", claims.DisplayName)
	assert.Equal(t, middleware.RoleCustomer, claims.Role)
}

func TestValidate_Expired(t *testing.T) {
	m := testManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateToken("user-1", "", middleware.RoleOwner)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := testManager().GenerateToken("user-1", "", middleware.RoleOwner)
	require.NoError(t, err)

	other := NewJWTManager(Config{Secret: "other", Issuer: "dangdang-auth", AccessTTL: time.Hour})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidate_WrongIssuer(t *testing.T) {
	token, err := NewJWTManager(Config{Secret: "test-secret", Issuer: "someone-else", AccessTTL: time.Hour}).
		GenerateToken("user-1", "", middleware.RoleOwner)
	require.NoError(t, err)

	_, err = testManager().Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestValidate_RejectsUnknownRole(t *testing.T) {
	m := testManager()
	token, err := m.GenerateToken("user-1", "", "superuser")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user-1", "role": "admin", "iss": "dangdang-auth", "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = testManager().Validate(token)
	assert.Error(t, err)
}

func TestGenerateToken_RequiresUser(t *testing.T) {
	_, err := testManager().GenerateToken("", "", middleware.RoleCustomer)
	assert.Error(t, err)
}
