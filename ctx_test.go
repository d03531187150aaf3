package share_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-share"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	t.Run("round trips a user", func(t *testing.T) {
		user := &share.User{ID: uuid.New(), Username: "ada"}
		ctx := share.WithContext(context.Background(), user)

		found, ok := share.FromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, user, found)
	})

	t.Run("absent user reports false", func(t *testing.T) {
		found, ok := share.FromContext(context.Background())
		assert.False(t, ok)
		assert.Nil(t, found)
	})
}

func TestClaimsContext(t *testing.T) {
	t.Run("round trips session claims", func(t *testing.T) {
		claims := &share.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			UID:              "user-1",
			Name:             "ada",
		}
		ctx := share.WithClaimsContext(context.Background(), claims)

		found, ok := share.GetClaims(ctx)
		require.True(t, ok)
		assert.Equal(t, "user-1", found.UserID())
		assert.Equal(t, "ada", found.Username())
	})

	t.Run("absent claims report false", func(t *testing.T) {
		found, ok := share.GetClaims(context.Background())
		assert.False(t, ok)
		assert.Nil(t, found)
	})
}
