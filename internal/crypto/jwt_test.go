package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager("s3cret")
	require.NoError(t, err)

	token, err := m.CreateToken("vscode", time.Hour)
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "vscode", claims.Editor)
	require.Equal(t, "vscode", claims.Subject)
}

func TestJWTManager_RejectsOtherSecret(t *testing.T) {
	a, err := NewJWTManager("one")
	require.NoError(t, err)
	b, err := NewJWTManager("two")
	require.NoError(t, err)

	token, err := a.CreateToken("vscode", 0)
	require.NoError(t, err)
	_, err = b.VerifyToken(token)
	require.Error(t, err)
}

func TestJWTManager_Expiry(t *testing.T) {
	m, err := NewJWTManager("s3cret")
	require.NoError(t, err)
	start := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return start }

	token, err := m.CreateToken("vscode", time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.VerifyToken(token)
	require.Error(t, err)
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager("")
	require.Error(t, err)
}
