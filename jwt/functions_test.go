package jwt

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestCreateAndValidate(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token, err := Create(Claims{
		Issuer:         "anonrelay",
		Subject:        "gateway",
		Audience:       "relay.example.com",
		IssuedAt:       strconv.FormatInt(now.Unix(), 10),
		ExpirationTime: strconv.FormatInt(now.Add(time.Hour).Unix(), 10),
	}, secret)
	require.NoError(t, err)

	header, claims, err := Validate(token, secret, now)
	require.NoError(t, err)
	assert.Equal(t, "HS256", header.Algorithm)
	assert.Equal(t, "gateway", claims.Subject)
	assert.Equal(t, "relay.example.com", claims.Audience)
}

func TestValidateRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	expired, err := Create(Claims{ExpirationTime: strconv.FormatInt(now.Add(-time.Minute).Unix(), 10)}, secret)
	require.NoError(t, err)
	early, err := Create(Claims{NotBefore: strconv.FormatInt(now.Add(time.Minute).Unix(), 10)}, secret)
	require.NoError(t, err)
	valid, err := Create(Claims{Subject: "gateway"}, secret)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")

	cases := map[string]struct {
		token  string
		secret []byte
	}{
		"malformed":    {"abc", secret},
		"wrong secret": {valid, []byte("other")},
		"tampered":     {parts[0] + "." + parts[0] + "." + parts[2], secret},
		"expired":      {expired, secret},
		"not before":   {early, secret},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Validate(tc.token, tc.secret, now)
			assert.Error(t, err)
		})
	}
}

func TestCreateRequiresSecret(t *testing.T) {
	_, err := Create(Claims{}, nil)
	assert.Error(t, err)
}
