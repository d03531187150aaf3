package share

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	Image       []byte
	Description string
	Visibility  Visibility
}

// PostManager authorizes and drives post operations. Reads are open to
// any authenticated caller; every mutation checks ownership against the
// caller's claims before touching the store.
type PostManager struct {
	store  ContentStore
	logger Logger
}

// PostManagerOption configures a PostManager.
type PostManagerOption func(*PostManager)

// WithPostLogger sets the logger.
func WithPostLogger(logger Logger) PostManagerOption {
	return func(m *PostManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewPostManager creates a new PostManager.
func NewPostManager(store ContentStore, opts ...PostManagerOption) *PostManager {
	m := &PostManager{
		store:  store,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Create stores a new post owned by the caller. The owner always comes
// from the caller's claims, never from the payload.
func (m *PostManager) Create(ctx context.Context, callerID string, input CreatePostInput) Envelope {
	owner, err := uuid.Parse(callerID)
	if err != nil {
		return ErrorEnvelope(ErrTokenMalformed)
	}

	if len(input.Image) == 0 {
		return ErrorEnvelope(errors.New("Post image is required.", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest))
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if !visibility.IsValid() {
		return ErrorEnvelope(errors.New("invalid visibility value", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest))
	}

	post := &Post{
		UserID:      owner,
		Image:       input.Image,
		Description: input.Description,
		Visibility:  visibility,
	}

	created, err := m.store.Insert(ctx, post)
	if err != nil {
		return m.failure("create", err)
	}

	return SuccessEnvelope(http.StatusCreated, created)
}

// Read returns a single post. Soft deleted posts are indistinguishable
// from posts that never existed.
func (m *PostManager) Read(ctx context.Context, id string) Envelope {
	post, env, ok := m.loadPost(ctx, id)
	if !ok {
		return env
	}

	return SuccessEnvelope(http.StatusOK, post)
}

// ListForOwner returns a page of the owner's posts, newest first. The
// visibility filter accepts the API spelling.
func (m *PostManager) ListForOwner(ctx context.Context, ownerID string, page, limit int, visibilityFilter string) Envelope {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return ErrorEnvelope(errors.New("invalid user id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest))
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var visibility *Visibility
	if visibilityFilter != "" {
		parsed, err := ParseVisibility(visibilityFilter)
		if err != nil {
			return ErrorEnvelope(err)
		}
		visibility = &parsed
	}

	records, total, err := m.store.ListByOwner(ctx, owner, limit, (page-1)*limit, visibility)
	if err != nil {
		return m.failure("list", err)
	}

	return SuccessEnvelope(http.StatusOK, map[string]any{
		"posts": records,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Update replaces the description of a post the caller owns.
func (m *PostManager) Update(ctx context.Context, callerID, id, description string) Envelope {
	post, env, ok := m.loadPost(ctx, id)
	if !ok {
		return env
	}

	if !post.OwnedBy(callerID) {
		return ErrorEnvelope(ErrNotOwner)
	}

	updated, err := m.store.UpdateDescription(ctx, post.ID, description)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(postNotFound())
		}
		return m.failure("update", err)
	}

	return SuccessEnvelope(http.StatusOK, updated)
}

// ChangeVisibility moves a post the caller owns to a new audience.
// Requesting the audience the post already has is rejected.
func (m *PostManager) ChangeVisibility(ctx context.Context, callerID, id, visibilityValue string) Envelope {
	visibility, err := ParseVisibility(visibilityValue)
	if err != nil {
		return ErrorEnvelope(err)
	}

	post, env, ok := m.loadPost(ctx, id)
	if !ok {
		return env
	}

	if !post.OwnedBy(callerID) {
		return ErrorEnvelope(ErrNotOwner)
	}

	if post.Visibility == visibility {
		return ErrorEnvelope(errors.New("Post is already "+visibility.APIValue(), errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest))
	}

	updated, err := m.store.UpdateVisibility(ctx, post.ID, visibility)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(postNotFound())
		}
		return m.failure("change visibility", err)
	}

	return SuccessEnvelope(http.StatusOK, updated)
}

// Remove soft deletes a post the caller owns.
func (m *PostManager) Remove(ctx context.Context, callerID, id string) Envelope {
	post, env, ok := m.loadPost(ctx, id)
	if !ok {
		return env
	}

	if !post.OwnedBy(callerID) {
		return ErrorEnvelope(ErrNotOwner)
	}

	if err := m.store.SoftDelete(ctx, post.ID); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrorEnvelope(postNotFound())
		}
		return m.failure("remove", err)
	}

	return SuccessEnvelope(http.StatusOK, map[string]any{
		"message": "Post deleted",
	})
}

func (m *PostManager) loadPost(ctx context.Context, id string) (*Post, Envelope, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrorEnvelope(postNotFound()), false
	}

	post, err := m.store.FindByID(ctx, parsed)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrorEnvelope(postNotFound()), false
		}
		return nil, m.failure("load post", err), false
	}

	return post, Envelope{}, true
}

func (m *PostManager) failure(op string, err error) Envelope {
	m.logger.Error("PostManager "+op+" failed", "error", err)
	return ErrorEnvelope(errors.Wrap(err, errors.CategoryInternal, "Internal Server Error").
		WithCode(errors.CodeInternal))
}

func postNotFound() error {
	return errors.New("Post not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound)
}
