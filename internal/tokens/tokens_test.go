package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/slotlist/slotlist/frontend/go-client/internal/config"
	"github.com/slotlist/slotlist/frontend/go-client/internal/models"
	"github.com/stretchr/testify/require"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.Mock.JWTSecret = secret
	return cfg
}

func testUser() *models.User {
	return &models.User{
		UID:      "user-123",
		SteamID:  "76561198000000000",
		Nickname: "Alice",
		Permissions: []models.Permission{
			{Permission: "community.foo.leader"},
		},
	}
}

func TestGenerateAndDecode(t *testing.T) {
	cfg := testConfig("test-secret-32-bytes-should-be-long-enough")
	tok, err := GenerateAccessToken(cfg, testUser(), time.Hour)
	require.NoError(t, err)

	c, err := Decode(tok)
	require.NoError(t, err)
	require.Equal(t, "user-123", c.User["uid"])
	require.Equal(t, "Alice", c.User["nickname"])
	require.Equal(t, []string{"community.foo.leader"}, c.Permissions)
	require.False(t, c.Expired(time.Now()))
	require.True(t, c.Expired(time.Now().Add(2*time.Hour)))
}

func TestDecode_PermissionObjects(t *testing.T) {
	claims := jwt.MapClaims{
		"user":        map[string]interface{}{"uid": "u1"},
		"permissions": []interface{}{map[string]interface{}{"permission": "admin.user"}, "*"},
		"exp":         time.Now().Add(time.Minute).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("x"))
	require.NoError(t, err)

	c, err := Decode(tok)
	require.NoError(t, err)
	require.Equal(t, []string{"admin.user", "*"}, c.Permissions)
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "not.a.jwt", "onlyonepart"} {
		_, err := Decode(raw)
		require.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestDecode_UserClaimWrongType(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user": "alice"}).SignedString([]byte("x"))
	require.NoError(t, err)
	_, err = Decode(tok)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestClaimsExpired_Boundaries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	require.True(t, (&Claims{ExpiresAt: now.Unix()}).Expired(now), "exp == now counts as expired")
	require.True(t, (&Claims{ExpiresAt: now.Add(-time.Hour).Unix()}).Expired(now))
	require.False(t, (&Claims{ExpiresAt: now.Add(time.Second).Unix()}).Expired(now))
	require.False(t, (&Claims{}).Expired(now), "no exp never expires")
	var nilClaims *Claims
	require.True(t, nilClaims.Expired(now))
}

func TestVerifier_ValidToken(t *testing.T) {
	cfg := testConfig("verifier-secret-32-bytes-xxxxxxxxx")
	tok, err := GenerateAccessToken(cfg, testUser(), time.Minute)
	require.NoError(t, err)

	vt, err := NewVerifier(cfg.Mock.JWTSecret).Verify(context.Background(), tok)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, vt.Claims(&claims))
	user, ok := claims["user"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "user-123", user["uid"])
}

func TestVerifier_WrongSecretFails(t *testing.T) {
	tok, err := GenerateAccessToken(testConfig("secret-one-32-bytes-xxxxxxxxxxxxxxxx"), testUser(), time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerifier_ExpiredFails(t *testing.T) {
	cfg := testConfig("expiry-secret-32-bytes-xxxxxxxxxxx")
	tok, err := GenerateAccessToken(cfg, testUser(), -time.Minute)
	require.NoError(t, err)
	_, err = NewVerifier(cfg.Mock.JWTSecret).Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerifier_AlgNoneRejected(t *testing.T) {
	headerEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadEnc := base64.RawURLEncoding.EncodeToString([]byte(`{"user":{"uid":"u-none"},"exp":9999999999}`))
	_, err := NewVerifier("x").Verify(context.Background(), headerEnc+"."+payloadEnc+".")
	require.Error(t, err)
}

func TestVerifier_TamperedPayload(t *testing.T) {
	cfg := testConfig("tamper-test-secret-32-bytes-xxxxxxx")
	tok, err := GenerateAccessToken(cfg, testUser(), 5*time.Minute)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payload), "user-123", "attacker", 1)))
	_, err = NewVerifier(cfg.Mock.JWTSecret).Verify(context.Background(), strings.Join(parts, "."))
	require.Error(t, err)
}
