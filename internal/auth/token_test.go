package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coalmart/coalmart/internal/models"
)

func TestCreateAndVerifyToken(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	token, err := at.CreateToken(&models.User{ID: 7, Role: models.RoleStaff})
	require.NoError(t, err)

	payload, err := at.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), payload.UserID)
	assert.Equal(t, models.RoleStaff, payload.Role)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))
	other := NewAuthToken([]byte("fedcba9876543210"))

	token, err := at.CreateToken(&models.User{ID: 7, Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	_, err := at.VerifyToken("not.a.token")
	assert.Error(t, err)
}
