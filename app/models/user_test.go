package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("tester", "tester@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, CheckPasswordHash("secret123", u.Password))
	assert.False(t, CheckPasswordHash("wrong", u.Password))
}

func TestCreateUser_Invalid(t *testing.T) {
	_, err := CreateUser("ab", "not-an-email", "x")
	assert.Error(t, err)
}
