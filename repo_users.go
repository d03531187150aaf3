package share

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var updatePasswordHashSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = current_timestamp
WHERE
	"usr"."id" = ?
RETURNING *;`

// UserPatch is the closed set of profile fields UpdateProfile may touch.
// Password, activation state, and timestamps move through their own
// operations and are not reachable from here.
type UserPatch struct {
	Email    *string
	Username *string
	Bio      *string
	Avatar   []byte
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Username == nil && p.Bio == nil && p.Avatar == nil
}

// CredentialStore is the persistence surface for accounts.
type CredentialStore interface {
	repository.Repository[*User]

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	// FindByEmail matches case insensitively and returns deactivated
	// accounts too; callers decide how inactive records surface.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ListActive pages through active accounts. A non empty filter
	// matches username or email, case insensitively.
	ListActive(ctx context.Context, filter string, limit, offset int) ([]*User, int, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ CredentialStore              = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) CredentialStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = lower(?)", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ListActive(ctx context.Context, filter string, limit, offset int) ([]*User, int, error) {
	var records []*User

	q := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.is_active = ?", true)

	if filter != "" {
		pattern := "%" + filter + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("lower(?TableAlias.username) LIKE lower(?)", pattern).
				WhereOr("lower(?TableAlias.email) LIKE lower(?)", pattern)
		})
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

func (a *users) UpdateProfile(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error) {
	if patch.IsEmpty() {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id":     id.String(),
				"reason": "empty patch",
			})
	}

	record := &User{}
	q := a.db.NewUpdate().
		Model(record).
		Where("?TableAlias.id = ?", id)

	if patch.Email != nil {
		q = q.Set("email = ?", *patch.Email)
	}
	if patch.Username != nil {
		q = q.Set("username = ?", *patch.Username)
	}
	if patch.Bio != nil {
		q = q.Set("bio = ?", *patch.Bio)
	}
	if patch.Avatar != nil {
		q = q.Set("profile_picture = ?", patch.Avatar)
	}

	res, err := q.
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

func (a *users) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, a.db, updatePasswordHashSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	record := &User{}

	res, err := a.db.NewUpdate().
		Model(record).
		Set("is_active = ?", active).
		Set("updated_at = current_timestamp").
		Where("?TableAlias.id = ?", id).
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

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
