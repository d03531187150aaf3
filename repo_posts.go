package share

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ContentStore is the persistence surface for posts. Soft deleted posts
// are invisible to every method here.
type ContentStore interface {
	Insert(ctx context.Context, record *Post) (*Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int, visibility *Visibility) ([]*Post, int, error)
	UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*Post, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility Visibility) (*Post, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// PostsRepository implements ContentStore using Bun.
type PostsRepository struct {
	db *bun.DB
}

var _ ContentStore = (*PostsRepository)(nil)

// NewPostsRepository creates a new repository.
func NewPostsRepository(db *bun.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

// Insert stores a new post, assigning an id when the caller did not.
func (r *PostsRepository) Insert(ctx context.Context, record *Post) (*Post, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Visibility == "" {
		record.Visibility = VisibilityPublic
	}

	_, err := r.db.NewInsert().
		Model(record).
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	return record, nil
}

// FindByID loads a post. The soft delete filter keeps removed posts out.
func (r *PostsRepository) FindByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record := &Post{}

	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

// ListByOwner returns the owner's posts newest first, with the total
// count for the same filter.
func (r *PostsRepository) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int, visibility *Visibility) ([]*Post, int, error) {
	var records []*Post

	q := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", owner)

	if visibility != nil {
		q = q.Where("?TableAlias.visibility_status = ?", *visibility)
	}

	total, err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// UpdateDescription replaces the post description.
func (r *PostsRepository) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*Post, error) {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("description = ?", description)
	})
}

// UpdateVisibility moves the post to a new audience.
func (r *PostsRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility Visibility) (*Post, error) {
	return r.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("visibility_status = ?", visibility)
	})
}

// SoftDelete marks the post deleted. Bun turns the delete into an
// update of deleted_at because of the soft_delete tag.
func (r *PostsRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Post)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (r *PostsRepository) update(ctx context.Context, id uuid.UUID, apply func(*bun.UpdateQuery) *bun.UpdateQuery) (*Post, error) {
	record := &Post{}

	q := r.db.NewUpdate().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.deleted_at IS NULL")

	res, err := apply(q).
		Set("updated_at = current_timestamp").
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return record, nil
}
