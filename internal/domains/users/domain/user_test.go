package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	hashCost = bcrypt.MinCost
}

func TestNewUser_HashesPassword(t *testing.T) {
	user, err := NewUser(0, " alice ", "secret", "")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, RoleSeller, user.Role)
	require.NotEqual(t, "secret", user.PasswordHash)
	require.True(t, user.CheckPassword("secret"))
	require.False(t, user.CheckPassword("wrong"))
	require.False(t, user.CheckPassword(""))
}

func TestNewUser_Invalid(t *testing.T) {
	_, err := NewUser(0, "", "secret", RoleSeller)
	require.ErrorIs(t, err, ErrEmptyUsername)

	_, err = NewUser(0, "bob", "abc", RoleSeller)
	require.ErrorIs(t, err, ErrWeakPassword)

	_, err = NewUser(0, "bob", "secret", Role("ADMIN"))
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("manager")
	require.NoError(t, err)
	require.Equal(t, RoleManager, role)

	role, err = ParseRole("")
	require.NoError(t, err)
	require.Equal(t, RoleSeller, role)

	_, err = ParseRole("root")
	require.ErrorIs(t, err, ErrInvalidRole)
}
