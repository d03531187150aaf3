package share_test

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-share"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockIdentity implements share.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

// noopLogger swallows log output in tests
type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// stubCredentialStore is an in-memory CredentialStore. The embedded
// interface covers methods a test never touches.
type stubCredentialStore struct {
	share.CredentialStore
	byID      map[string]*share.User
	createErr error
	findErr   error
}

func newStubCredentialStore(users ...*share.User) *stubCredentialStore {
	s := &stubCredentialStore{byID: map[string]*share.User{}}
	for _, u := range users {
		s.byID[u.ID.String()] = u
	}
	return s
}

func (s *stubCredentialStore) Create(ctx context.Context, record *share.User, criteria ...repository.InsertCriteria) (*share.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.byID[record.ID.String()] = record
	return record, nil
}

func (s *stubCredentialStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*share.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubCredentialStore) FindByEmail(ctx context.Context, email string) (*share.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubCredentialStore) ListActive(ctx context.Context, filter string, limit, offset int) ([]*share.User, int, error) {
	filter = strings.ToLower(filter)
	active := []*share.User{}
	for _, u := range s.byID {
		if !u.IsActive {
			continue
		}
		if filter != "" &&
			!strings.Contains(strings.ToLower(u.Username), filter) &&
			!strings.Contains(strings.ToLower(u.Email), filter) {
			continue
		}
		active = append(active, u)
	}

	total := len(active)
	if offset > len(active) {
		return []*share.User{}, total, nil
	}
	active = active[offset:]
	if limit < len(active) {
		active = active[:limit]
	}
	return active, total, nil
}

func (s *stubCredentialStore) UpdateProfile(ctx context.Context, id uuid.UUID, patch share.UserPatch) (*share.User, error) {
	user, ok := s.byID[id.String()]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}

	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Avatar != nil {
		user.Avatar = patch.Avatar
	}
	return user, nil
}

func (s *stubCredentialStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := s.byID[id.String()]
	if !ok {
		return repository.NewRecordNotFound()
	}
	user.PasswordHash = passwordHash
	return nil
}

func (s *stubCredentialStore) SetActive(ctx context.Context, id uuid.UUID, active bool) (*share.User, error) {
	user, ok := s.byID[id.String()]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	user.IsActive = active
	return user, nil
}

// stubContentStore is an in-memory ContentStore.
type stubContentStore struct {
	share.ContentStore
	byID      map[string]*share.Post
	insertErr error
}

func newStubContentStore(posts ...*share.Post) *stubContentStore {
	s := &stubContentStore{byID: map[string]*share.Post{}}
	for _, p := range posts {
		s.byID[p.ID.String()] = p
	}
	return s
}

func (s *stubContentStore) Insert(ctx context.Context, record *share.Post) (*share.Post, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Visibility == "" {
		record.Visibility = share.VisibilityPublic
	}
	s.byID[record.ID.String()] = record
	return record, nil
}

func (s *stubContentStore) FindByID(ctx context.Context, id uuid.UUID) (*share.Post, error) {
	post, ok := s.byID[id.String()]
	if !ok || post.DeletedAt != nil {
		return nil, repository.NewRecordNotFound()
	}
	return post, nil
}

func (s *stubContentStore) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int, visibility *share.Visibility) ([]*share.Post, int, error) {
	matches := []*share.Post{}
	for _, p := range s.byID {
		if p.DeletedAt != nil || p.UserID != owner {
			continue
		}
		if visibility != nil && p.Visibility != *visibility {
			continue
		}
		matches = append(matches, p)
	}

	total := len(matches)
	if offset > len(matches) {
		return []*share.Post{}, total, nil
	}
	matches = matches[offset:]
	if limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, total, nil
}

func (s *stubContentStore) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*share.Post, error) {
	post, ok := s.byID[id.String()]
	if !ok || post.DeletedAt != nil {
		return nil, repository.NewRecordNotFound()
	}
	post.Description = description
	return post, nil
}

func (s *stubContentStore) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility share.Visibility) (*share.Post, error) {
	post, ok := s.byID[id.String()]
	if !ok || post.DeletedAt != nil {
		return nil, repository.NewRecordNotFound()
	}
	post.Visibility = visibility
	return post, nil
}

func (s *stubContentStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	post, ok := s.byID[id.String()]
	if !ok || post.DeletedAt != nil {
		return repository.NewRecordNotFound()
	}
	now := time.Now()
	post.DeletedAt = &now
	return nil
}

// stubTokenService issues a fixed token.
type stubTokenService struct {
	token string
	err   error
}

func (s *stubTokenService) Generate(identity share.Identity) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func (s *stubTokenService) Validate(tokenString string) (share.AuthClaims, error) {
	return nil, share.ErrTokenMalformed
}
