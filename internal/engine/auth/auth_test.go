package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("admin", Admins...))
	assert.True(t, Allowed("marketing_manager", Managers...))
	assert.False(t, Allowed("content_creator", Managers...))
	assert.False(t, Allowed("", ""))
	assert.False(t, Allowed("admin"))
}

func TestOwnerOrAllowed(t *testing.T) {
	creator := Principal{UserID: 3, Role: "content_creator"}
	assert.True(t, OwnerOrAllowed(creator, 3, Managers...))
	assert.False(t, OwnerOrAllowed(creator, 4, Managers...))
	assert.True(t, OwnerOrAllowed(Principal{UserID: 1, Role: "admin"}, 4, Managers...))
	assert.False(t, OwnerOrAllowed(Principal{}, 0, Managers...))
}

func TestRequire(t *testing.T) {
	require.NoError(t, Require("admin", "nope", Admins...))
	err := Require("user", "nope", Admins...)
	var forbidden ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	require.Equal(t, "nope", forbidden.Error())
	require.Equal(t, "Access denied. Insufficient permissions.", ForbiddenError{}.Error())
}

func TestPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("admin123")
	require.NoError(t, err)
	require.NotEqual(t, "admin123", digest)
	require.True(t, CheckPassword("admin123", digest))
	require.False(t, CheckPassword("wrong", digest))
	require.False(t, CheckPassword("admin123", "not-a-digest"))
}

func TestTokenIssueVerify(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens := Tokens{Secret: "s3cret", Now: func() time.Time { return now }}
	token, err := tokens.Issue(Principal{UserID: 7, Email: "a@example.com", Role: "admin"})
	require.NoError(t, err)

	p, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, Principal{UserID: 7, Email: "a@example.com", Role: "admin"}, p)
}

func TestTokenExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	tokens := Tokens{Secret: "s3cret", Now: func() time.Time { return clock }}
	token, err := tokens.Issue(Principal{UserID: 7, Role: "admin"})
	require.NoError(t, err)

	clock = now.Add(TokenTTL + time.Minute)
	_, err = tokens.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSecretAndAlg(t *testing.T) {
	tokens := Tokens{Secret: "s3cret"}
	other := Tokens{Secret: "other"}
	token, err := other.Issue(Principal{UserID: 1, Role: "admin"})
	require.NoError(t, err)
	_, err = tokens.Verify(token)
	require.True(t, errors.Is(err, ErrInvalidToken))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id": 1, "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	tokens := Tokens{Secret: "s3cret"}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1, "role": "admin"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = tokens.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}
