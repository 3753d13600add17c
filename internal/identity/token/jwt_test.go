package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("unit-test-signing-key", "pulseboard-test", 30*time.Minute)
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestService()
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	signed, err := svc.Issue("ana@example.com", "Manager", now)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Verify(signed, now)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Subject())
	assert.Equal(t, "Manager", claims.Role)
}

// Issue and Verify share the caller's clock, so a token minted at a fixed
// instant stays valid until exactly that instant plus the TTL.
func TestVerifySharesIssuanceClock(t *testing.T) {
	svc := newTestService()
	issuedAt := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	signed, err := svc.Issue("ana@example.com", "Employee", issuedAt)
	require.NoError(t, err)

	_, err = svc.Verify(signed, issuedAt.Add(29*time.Minute))
	require.NoError(t, err)

	_, err = svc.Verify(signed, issuedAt.Add(31*time.Minute))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyWrongKey(t *testing.T) {
	signed, err := NewService("key-one", "pulseboard-test", time.Minute).Issue("ana@example.com", "", time.Now())
	require.NoError(t, err)

	_, err = NewService("key-two", "pulseboard-test", time.Minute).Verify(signed, time.Now())
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := newTestService()

	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		_, err := svc.Verify(raw, time.Now())
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestDefaultTTL(t *testing.T) {
	svc := NewService("key", "iss", 0)
	assert.Equal(t, DefaultTTL, svc.TTL())
}
