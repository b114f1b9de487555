package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec() *Codec {
	return &Codec{
		Secret:     []byte("test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestCodec_IssueAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, err := codec.IssueAccess("42", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.ParseAccess(token)
	require.NoError(t, err)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, TypeAccess, claims.TokenType)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(codec.AccessTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestCodec_IssueRefresh_SetsJTIAndExpiry(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	token, jti, expiresAt, err := codec.IssueRefresh("7")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Len(t, jti, 32)

	claims, err := codec.ParseRefresh(token)
	require.NoError(t, err)

	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, TypeRefresh, claims.TokenType)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestCodec_ParseRejectsWrongType(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	access, err := codec.IssueAccess("1", "user")
	require.NoError(t, err)
	refresh, _, _, err := codec.IssueRefresh("1")
	require.NoError(t, err)

	_, err = codec.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_ParseRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()
	other := &Codec{Secret: []byte("another-secret"), AccessTTL: time.Minute, RefreshTTL: time.Minute}

	token, err := other.IssueAccess("1", "user")
	require.NoError(t, err)

	_, err = codec.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_ParseRejectsExpired(t *testing.T) {
	t.Parallel()

	expired := &Codec{Secret: []byte("test-secret"), AccessTTL: -time.Minute, RefreshTTL: -time.Minute}

	token, err := expired.IssueAccess("1", "user")
	require.NoError(t, err)

	_, err = expired.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJTI_UniqueHex(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		jti, err := NewJTI()
		require.NoError(t, err)
		require.Len(t, jti, 32)
		require.False(t, seen[jti], "jti repeated")
		seen[jti] = true
	}
}
