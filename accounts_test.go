package share_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"testing"

	"github.com/goliatone/go-share"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "s3cret-password!"

var (
	hashOnce     sync.Once
	passwordHash string
)

func testPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		hash, err := share.HashPassword(testPassword)
		if err != nil {
			t.Fatalf("failed to hash test password: %v", err)
		}
		passwordHash = hash
	})
	return passwordHash
}

func activeUser(t *testing.T) *share.User {
	return &share.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		Username:     "ada",
		PasswordHash: testPasswordHash(t),
		IsActive:     true,
	}
}

func newAccountManager(store share.CredentialStore) *share.AccountManager {
	return share.NewAccountManager(store, &stubTokenService{token: "signed.token.value"},
		share.WithAccountLogger(noopLogger{}),
	)
}

func TestAccountManager_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new account", func(t *testing.T) {
		store := newStubCredentialStore()
		manager := newAccountManager(store)

		env := manager.Register(ctx, share.RegisterInput{
			Email:    "ada@example.com",
			Username: "ada",
			Password: testPassword,
		})

		assert.True(t, env.Success)
		assert.Equal(t, http.StatusCreated, env.StatusCode)

		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Success on creating new user", data["message"])
		assert.NotEmpty(t, data["id"])

		created, err := store.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, created.IsActive)
		assert.NotEqual(t, testPassword, created.PasswordHash)
		assert.NoError(t, share.ComparePasswordAndHash(testPassword, created.PasswordHash))
	})

	t.Run("reports every missing field at once", func(t *testing.T) {
		manager := newAccountManager(newStubCredentialStore())

		env := manager.Register(ctx, share.RegisterInput{})

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Contains(t, env.Error, "Email is required")
		assert.Contains(t, env.Error, "Username is required")
		assert.Contains(t, env.Error, "Password is required")
	})

	t.Run("rejects a duplicate email even for a deactivated account", func(t *testing.T) {
		existing := activeUser(t)
		existing.IsActive = false
		store := newStubCredentialStore(existing)
		manager := newAccountManager(store)

		env := manager.Register(ctx, share.RegisterInput{
			Email:    existing.Email,
			Username: "someone-else",
			Password: testPassword,
		})

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Equal(t, "User with this email already exists", env.Error)
	})

	t.Run("rejects a duplicate email regardless of case", func(t *testing.T) {
		existing := activeUser(t)
		store := newStubCredentialStore(existing)
		manager := newAccountManager(store)

		env := manager.Register(ctx, share.RegisterInput{
			Email:    "ADA@EXAMPLE.COM",
			Username: "shouting-ada",
			Password: testPassword,
		})

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Equal(t, "User with this email already exists", env.Error)
	})

	t.Run("store failures stay internal", func(t *testing.T) {
		store := newStubCredentialStore()
		store.createErr = stderrors.New("disk I/O error")
		manager := newAccountManager(store)

		env := manager.Register(ctx, share.RegisterInput{
			Email:    "ada@example.com",
			Username: "ada",
			Password: testPassword,
		})

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
		assert.Equal(t, "Internal Server Error", env.Error)
	})
}

func TestAccountManager_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a token and the sanitized user", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.Authenticate(ctx, user.Email, testPassword)

		assert.True(t, env.Success)
		assert.Equal(t, http.StatusOK, env.StatusCode)

		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "signed.token.value", data["token"])

		returned, ok := data["user"].(*share.User)
		require.True(t, ok)
		assert.Empty(t, returned.PasswordHash)
		assert.Equal(t, user.ID, returned.ID)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.Authenticate(ctx, user.Email, "wrong-password")

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	})

	t.Run("reports every missing field at once", func(t *testing.T) {
		manager := newAccountManager(newStubCredentialStore())

		env := manager.Authenticate(ctx, "", "")

		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Contains(t, env.Error, "Email is required")
		assert.Contains(t, env.Error, "Password is required")
	})

	t.Run("missing and deactivated accounts are indistinguishable", func(t *testing.T) {
		deactivated := activeUser(t)
		deactivated.IsActive = false
		manager := newAccountManager(newStubCredentialStore(deactivated))

		missingEnv := manager.Authenticate(ctx, "ghost@example.com", testPassword)
		deactivatedEnv := manager.Authenticate(ctx, deactivated.Email, testPassword)

		assert.Equal(t, http.StatusNotFound, missingEnv.StatusCode)
		assert.Equal(t, missingEnv, deactivatedEnv)
	})
}

func TestAccountManager_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a partial update", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		bio := "building analytical engines"
		env := manager.UpdateProfile(ctx, user.ID.String(), share.UserPatch{Bio: &bio})

		assert.True(t, env.Success)
		assert.Equal(t, http.StatusOK, env.StatusCode)

		updated, ok := env.Data.(*share.User)
		require.True(t, ok)
		assert.Equal(t, bio, updated.Bio)
		assert.Empty(t, updated.PasswordHash)
	})

	t.Run("rejects an empty patch", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.UpdateProfile(ctx, user.ID.String(), share.UserPatch{})

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Equal(t, "No changes to apply", env.Error)
	})

	t.Run("treats a deactivated account as missing", func(t *testing.T) {
		user := activeUser(t)
		user.IsActive = false
		manager := newAccountManager(newStubCredentialStore(user))

		bio := "nope"
		env := manager.UpdateProfile(ctx, user.ID.String(), share.UserPatch{Bio: &bio})

		assert.Equal(t, http.StatusNotFound, env.StatusCode)
	})
}

func TestAccountManager_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the password", func(t *testing.T) {
		user := activeUser(t)
		store := newStubCredentialStore(user)
		manager := newAccountManager(store)

		env := manager.ChangePassword(ctx, user.ID.String(), testPassword, "brand-new-password!")

		assert.True(t, env.Success)
		assert.Equal(t, http.StatusOK, env.StatusCode)
		assert.NoError(t, share.ComparePasswordAndHash("brand-new-password!", user.PasswordHash))
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.ChangePassword(ctx, user.ID.String(), "wrong-password", "brand-new-password!")

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusForbidden, env.StatusCode)
	})

	t.Run("rejects an empty new password", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.ChangePassword(ctx, user.ID.String(), testPassword, "")

		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	})
}

func TestAccountManager_SetActiveStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates and reactivates", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.SetActiveStatus(ctx, user.ID.String(), false)
		assert.True(t, env.Success)
		assert.False(t, user.IsActive)

		env = manager.SetActiveStatus(ctx, user.ID.String(), true)
		assert.True(t, env.Success)
		assert.True(t, user.IsActive)
	})

	t.Run("rejects a no-op transition", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.SetActiveStatus(ctx, user.ID.String(), true)

		assert.False(t, env.Success)
		assert.Equal(t, http.StatusBadRequest, env.StatusCode)
		assert.Equal(t, "User is already active", env.Error)
	})

	t.Run("missing account yields not found", func(t *testing.T) {
		manager := newAccountManager(newStubCredentialStore())

		env := manager.SetActiveStatus(ctx, uuid.NewString(), false)

		assert.Equal(t, http.StatusNotFound, env.StatusCode)
	})
}

func TestAccountManager_ListActive(t *testing.T) {
	ctx := context.Background()

	t.Run("lists only active accounts without hashes", func(t *testing.T) {
		active := activeUser(t)
		inactive := activeUser(t)
		inactive.ID = uuid.New()
		inactive.Email = "ghost@example.com"
		inactive.IsActive = false

		manager := newAccountManager(newStubCredentialStore(active, inactive))

		env := manager.ListActive(ctx, "", 1, 10)

		assert.True(t, env.Success)
		data, ok := env.Data.(map[string]any)
		require.True(t, ok)

		listed, ok := data["users"].([]*share.User)
		require.True(t, ok)
		require.Len(t, listed, 1)
		assert.Equal(t, active.ID, listed[0].ID)
		assert.Empty(t, listed[0].PasswordHash)
		assert.Equal(t, 1, data["total"])
	})

	t.Run("filters by username or email fragment", func(t *testing.T) {
		ada := activeUser(t)
		grace := activeUser(t)
		grace.ID = uuid.New()
		grace.Email = "grace@example.com"
		grace.Username = "grace"

		manager := newAccountManager(newStubCredentialStore(ada, grace))

		env := manager.ListActive(ctx, "GRACE", 1, 10)

		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		listed, ok := data["users"].([]*share.User)
		require.True(t, ok)
		require.Len(t, listed, 1)
		assert.Equal(t, "grace", listed[0].Username)
	})

	t.Run("normalizes pagination values", func(t *testing.T) {
		manager := newAccountManager(newStubCredentialStore(activeUser(t)))

		env := manager.ListActive(ctx, "", 0, 0)

		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 1, data["page"])
		assert.Equal(t, 10, data["limit"])
	})
}

func TestAccountManager_FindUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the sanitized user", func(t *testing.T) {
		user := activeUser(t)
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.FindUser(ctx, user.ID.String())

		assert.True(t, env.Success)
		found, ok := env.Data.(*share.User)
		require.True(t, ok)
		assert.Equal(t, user.ID, found.ID)
		assert.Empty(t, found.PasswordHash)
	})

	t.Run("hides deactivated accounts", func(t *testing.T) {
		user := activeUser(t)
		user.IsActive = false
		manager := newAccountManager(newStubCredentialStore(user))

		env := manager.FindUser(ctx, user.ID.String())

		assert.Equal(t, http.StatusNotFound, env.StatusCode)
	})

	t.Run("rejects a malformed id as missing", func(t *testing.T) {
		manager := newAccountManager(newStubCredentialStore())

		env := manager.FindUser(ctx, "not-a-uuid")

		assert.Equal(t, http.StatusNotFound, env.StatusCode)
	})
}
