package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RejectsWeakConfig(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService(testSecret, 0)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := newTestService(t, clock)

	token, err := svc.Issue(Identity{ID: 42, Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, clock.t.UTC(), token.IssuedAt)
	assert.Equal(t, clock.t.Add(time.Hour).UTC(), token.ExpiresAt)

	identity, err := svc.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 42, Email: "a@x.com"}, identity)
}

func TestTokenService_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := newTestService(t, clock)

	token, err := svc.Issue(Identity{ID: 1})
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = svc.Verify(token.Value)
	assert.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	_, err = svc.Verify(token.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenService_NotYetIssued(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := newTestService(t, clock)

	token, err := svc.Issue(Identity{ID: 1})
	require.NoError(t, err)

	clock.t = clock.t.Add(-time.Minute)
	_, err = svc.Verify(token.Value)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenService_RejectsTampering(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := newTestService(t, clock)

	token, err := svc.Issue(Identity{ID: 7})
	require.NoError(t, err)

	other, err := NewTokenService(strings.Repeat("x", 32), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	foreign, err := other.Issue(Identity{ID: 7})
	require.NoError(t, err)

	parts := strings.Split(token.Value, ".")
	require.Len(t, parts, 3)
	resigned := parts[0] + "." + parts[1] + "." + strings.Split(foreign.Value, ".")[2]

	testCases := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"foreign key":     foreign.Value,
		"swapped sig":     resigned,
		"truncated":       token.Value[:len(token.Value)-4],
		"missing segment": parts[0] + "." + parts[1],
	}
	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(raw)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := newTestService(t, clock)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestTokenService_RejectsBadSubject(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	svc := newTestService(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{ID: 3, Email: "c@x.com"})
	identity, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), identity.ID)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "pw1", hash)
	assert.True(t, VerifyPassword(hash, "pw1"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
