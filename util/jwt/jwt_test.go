package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestIssueParseRoundTrip(t *testing.T) {
	tok, err := Issue(secret, 7, "alice@example.com", "user", "Alice Smith", TypeAccess, time.Hour)
	require.NoError(t, err)

	c, err := Parse(tok, secret)
	require.NoError(t, err)
	require.EqualValues(t, 7, c.UserID)
	require.Equal(t, "alice@example.com", c.Email)
	require.Equal(t, "user", c.Role)
	require.Equal(t, "Alice Smith", c.FullName)
	require.Equal(t, TypeAccess, c.Type)
	require.NotEmpty(t, c.JTI)
	require.WithinDuration(t, time.Now().Add(time.Hour), c.Expires, 5*time.Second)
}

func TestParse_BearerPrefix(t *testing.T) {
	tok, err := Issue(secret, 7, "a@b.c", "user", "A B", TypeAccess, time.Hour)
	require.NoError(t, err)

	c, err := Parse("Bearer "+tok, secret)
	require.NoError(t, err)
	require.EqualValues(t, 7, c.UserID)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Issue(secret, 7, "a@b.c", "user", "A B", TypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tok, "other-secret")
	require.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Issue(secret, 7, "a@b.c", "user", "A B", TypeAccess, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(tok, secret)
	require.Error(t, err)
}

func TestParseTyped(t *testing.T) {
	tok, err := Issue(secret, 7, "a@b.c", "user", "A B", TypeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = ParseTyped(tok, secret, TypeAccess)
	require.ErrorIs(t, err, ErrWrongType)

	c, err := ParseTyped(tok, secret, TypeRefresh)
	require.NoError(t, err)
	require.Equal(t, TypeRefresh, c.Type)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse("", secret)
	require.Error(t, err)
	_, err = Parse("not-a-jwt", secret)
	require.Error(t, err)
}
