package share

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Accounts are never physically deleted;
// deactivation flips IsActive and the record stays behind for audit.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Username      string     `bun:"username,notnull" json:"username,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Bio           string     `bun:"bio" json:"bio,omitempty"`
	Avatar        []byte     `bun:"profile_picture" json:"profile_picture,omitempty"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Sanitized returns a copy safe to serialize: the password hash is
// dropped so no read path can leak it.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	return &out
}

// Post is the content model. Removal is a soft delete via DeletedAt so
// removed posts behave as missing on every read path.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Image         []byte     `bun:"image,notnull" json:"image,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Visibility    Visibility `bun:"visibility_status,notnull,default:'public'" json:"visibility"`
	LikesCount    int        `bun:"likes_count,notnull,default:0" json:"likes_count"`
	CommentsCount int        `bun:"comments_count,notnull,default:0" json:"comments_count"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// OwnedBy reports whether the post belongs to the given account id.
func (p *Post) OwnedBy(userID string) bool {
	if p == nil {
		return false
	}
	return p.UserID.String() == userID
}
