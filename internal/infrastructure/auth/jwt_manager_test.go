package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"abcstore/internal/domain/entity"
	"abcstore/internal/infrastructure/auth"
)

func TestGenerateAndVerify(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 3600)

	user := &entity.User{
		ID:    primitive.NewObjectID(),
		Email: "jo@example.com",
		Role:  entity.RoleAdmin,
	}

	token, err := m.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewJWTManager("secret-a", 3600)
	verifier := auth.NewJWTManager("secret-b", 3600)

	token, err := issuer.Generate(&entity.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := auth.NewJWTManager("test-secret", -60)

	token, err := m.Generate(&entity.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := auth.NewJWTManager("test-secret", 3600)

	_, err := m.Verify("not.a.token")
	assert.Error(t, err)
}
