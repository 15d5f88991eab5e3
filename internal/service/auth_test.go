package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/jwt"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	auth := NewAuthService("secret", "relay.example.com")
	require.True(t, auth.Enabled())

	token, err := auth.IssueToken("telegram-gateway", time.Hour)
	require.NoError(t, err)

	result, err := auth.AuthJwt(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "telegram-gateway", result.Issuer)
}

func TestAuthServiceRejects(t *testing.T) {
	auth := NewAuthService("secret", "relay.example.com")
	ctx := context.Background()

	other := NewAuthService("secret", "other.example.com")
	token, err := other.IssueToken("gw", time.Hour)
	require.NoError(t, err)
	_, err = auth.AuthJwt(ctx, token)
	assert.Error(t, err)

	wrongSubject, err := jwt.Create(jwt.Claims{Subject: "someone", Audience: "relay.example.com"}, []byte("secret"))
	require.NoError(t, err)
	_, err = auth.AuthJwt(ctx, wrongSubject)
	assert.Error(t, err)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	expiring, err := NewAuthService("secret", "relay.example.com").IssueToken("gw", time.Hour)
	require.NoError(t, err)
	_, err = auth.AuthJwt(ctx, expiring)
	assert.Error(t, err)
}

func TestAuthServiceDisabled(t *testing.T) {
	assert.False(t, NewAuthService("", "").Enabled())
}
