package share

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Bio      string
	Avatar   []byte
}

// AccountManager drives the account lifecycle: registration,
// authentication, profile updates, password changes, and activation.
type AccountManager struct {
	store  CredentialStore
	tokens TokenService
	logger Logger
	newID  func(email string) uuid.UUID
}

// AccountManagerOption configures an AccountManager.
type AccountManagerOption func(*AccountManager)

// WithAccountLogger sets the logger.
func WithAccountLogger(logger Logger) AccountManagerOption {
	return func(m *AccountManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDeterministicIDs derives account ids from the email address, so
// repeated imports of the same dataset produce stable ids.
func WithDeterministicIDs() AccountManagerOption {
	return func(m *AccountManager) {
		m.newID = func(email string) uuid.UUID {
			id, err := hashid.NewUUID(email)
			if err != nil {
				return uuid.New()
			}
			return id
		}
	}
}

// NewAccountManager creates a new AccountManager.
func NewAccountManager(store CredentialStore, tokens TokenService, opts ...AccountManagerOption) *AccountManager {
	m := &AccountManager{
		store:  store,
		tokens: tokens,
		logger: defLogger{},
		newID: func(string) uuid.UUID {
			return uuid.New()
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Register creates a new account. Validation reports every missing field
// at once, and an email that exists in any state (active or not) is
// rejected before any write happens.
func (m *AccountManager) Register(ctx context.Context, input RegisterInput) Envelope {
	if err := requireFields(map[string]string{
		"Email":    input.Email,
		"Username": input.Username,
		"Password": input.Password,
	}); err != nil {
		return ErrorEnvelope(err)
	}

	if _, err := m.store.FindByEmail(ctx, input.Email); err == nil {
		return ErrorEnvelope(ErrEmailAlreadyExists)
	} else if !repository.IsRecordNotFound(err) {
		return m.failure("register", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return m.failure("register", err)
	}

	user := &User{
		ID:           m.newID(input.Email),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		Bio:          input.Bio,
		Avatar:       input.Avatar,
		IsActive:     true,
	}

	created, err := m.store.Create(ctx, user)
	if err != nil {
		return m.failure("register", err)
	}

	return SuccessEnvelope(http.StatusCreated, map[string]any{
		"message": "Success on creating new user",
		"id":      created.ID,
	})
}

// Authenticate verifies credentials and issues a session token. Missing
// and deactivated accounts are indistinguishable so callers cannot probe
// which addresses exist.
func (m *AccountManager) Authenticate(ctx context.Context, email, password string) Envelope {
	if err := requireFields(map[string]string{
		"Email":    email,
		"Password": password,
	}); err != nil {
		return ErrorEnvelope(err)
	}

	user, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(ErrIdentityNotFound)
		}
		return m.failure("authenticate", err)
	}

	if !user.IsActive {
		return ErrorEnvelope(ErrIdentityNotFound)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return ErrorEnvelope(ErrMismatchedHashAndPassword)
		}
		return m.failure("authenticate", err)
	}

	token, err := m.tokens.Generate(NewIdentityFromUser(user))
	if err != nil {
		return m.failure("authenticate", err)
	}

	return SuccessEnvelope(http.StatusOK, map[string]any{
		"token": token,
		"user":  user.Sanitized(),
	})
}

// FindUser returns a single active account with the password stripped.
func (m *AccountManager) FindUser(ctx context.Context, id string) Envelope {
	user, env, ok := m.activeUser(ctx, id)
	if !ok {
		return env
	}

	return SuccessEnvelope(http.StatusOK, user.Sanitized())
}

// UpdateProfile applies a partial profile update to the caller's account.
func (m *AccountManager) UpdateProfile(ctx context.Context, callerID string, patch UserPatch) Envelope {
	user, env, ok := m.activeUser(ctx, callerID)
	if !ok {
		return env
	}

	if patch.IsEmpty() {
		return ErrorEnvelope(errors.New("No changes to apply", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest))
	}

	updated, err := m.store.UpdateProfile(ctx, user.ID, patch)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(ErrIdentityNotFound)
		}
		return m.failure("update profile", err)
	}

	return SuccessEnvelope(http.StatusOK, updated.Sanitized())
}

// ChangePassword rotates the caller's password after verifying the
// current one.
func (m *AccountManager) ChangePassword(ctx context.Context, callerID, currentPassword, newPassword string) Envelope {
	user, env, ok := m.activeUser(ctx, callerID)
	if !ok {
		return env
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return ErrorEnvelope(errors.New("Current password is incorrect", errors.CategoryAuthz).
				WithCode(errors.CodeForbidden))
		}
		return m.failure("change password", err)
	}

	if newPassword == "" {
		return ErrorEnvelope(errors.New("New password is required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest))
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return m.failure("change password", err)
	}

	if err := m.store.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(ErrIdentityNotFound)
		}
		return m.failure("change password", err)
	}

	return SuccessEnvelope(http.StatusOK, map[string]any{
		"message": "Password updated",
	})
}

// SetActiveStatus activates or deactivates an account. Requesting the
// state the account is already in is rejected rather than silently
// succeeding.
func (m *AccountManager) SetActiveStatus(ctx context.Context, callerID string, active bool) Envelope {
	id, err := uuid.Parse(callerID)
	if err != nil {
		return ErrorEnvelope(ErrIdentityNotFound)
	}

	user, err := m.store.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(ErrIdentityNotFound)
		}
		return m.failure("set active status", err)
	}

	if user.IsActive == active {
		msg := "User is already inactive"
		if active {
			msg = "User is already active"
		}
		return ErrorEnvelope(errors.New(msg, errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest))
	}

	if _, err := m.store.SetActive(ctx, user.ID, active); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(ErrIdentityNotFound)
		}
		return m.failure("set active status", err)
	}

	msg := "User deactivated"
	if active {
		msg = "User activated"
	}

	return SuccessEnvelope(http.StatusOK, map[string]any{
		"message": msg,
	})
}

// ListActive returns a page of active accounts, newest first, with
// password hashes stripped. A non empty filter narrows the page to
// accounts whose username or email contains it.
func (m *AccountManager) ListActive(ctx context.Context, filter string, page, limit int) Envelope {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	records, total, err := m.store.ListActive(ctx, strings.TrimSpace(filter), limit, (page-1)*limit)
	if err != nil {
		return m.failure("list active", err)
	}

	sanitized := make([]*User, len(records))
	for i, u := range records {
		sanitized[i] = u.Sanitized()
	}

	return SuccessEnvelope(http.StatusOK, map[string]any{
		"users": sanitized,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// activeUser loads an account by id, treating missing, malformed, and
// deactivated identically.
func (m *AccountManager) activeUser(ctx context.Context, id string) (*User, Envelope, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrorEnvelope(ErrIdentityNotFound), false
	}

	user, err := m.store.GetByID(ctx, parsed.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrorEnvelope(ErrIdentityNotFound), false
		}
		return nil, m.failure("load user", err), false
	}

	if !user.IsActive {
		return nil, ErrorEnvelope(ErrIdentityNotFound), false
	}

	return user, Envelope{}, true
}

func (m *AccountManager) failure(op string, err error) Envelope {
	m.logger.Error("AccountManager "+op+" failed", "error", err)
	return ErrorEnvelope(errors.Wrap(err, errors.CategoryInternal, "Internal Server Error").
		WithCode(errors.CodeInternal))
}

func requireFields(fields map[string]string) error {
	missing := make([]string, 0, len(fields))
	for _, name := range []string{"Email", "Username", "Password"} {
		value, tracked := fields[name]
		if tracked && strings.TrimSpace(value) == "" {
			missing = append(missing, name+" is required")
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return errors.New(strings.Join(missing, ", "), errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{
			"missing": missing,
		})
}
