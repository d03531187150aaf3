package share

import (
	"encoding/json"

	"github.com/goliatone/go-errors"
)

// Visibility is the audience a post is shared with. The stored form uses
// an underscore (friends_only) while the API exchanges the hyphenated
// spelling (friends-only); the two never mix.
type Visibility string

const (
	// VisibilityPublic is visible to anyone
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate is visible to the owner only
	VisibilityPrivate Visibility = "private"
	// VisibilityFriendsOnly is visible to the owner's friends
	VisibilityFriendsOnly Visibility = "friends_only"
)

const friendsOnlyAPISpelling = "friends-only"

// ParseVisibility maps an API value into the stored form. It accepts the
// hyphenated friends-only spelling and the canonical stored values.
func ParseVisibility(value string) (Visibility, error) {
	switch value {
	case string(VisibilityPublic):
		return VisibilityPublic, nil
	case string(VisibilityPrivate):
		return VisibilityPrivate, nil
	case friendsOnlyAPISpelling, string(VisibilityFriendsOnly):
		return VisibilityFriendsOnly, nil
	}
	return "", errors.New("invalid visibility value", errors.CategoryBadInput).
		WithCode(errors.CodeBadRequest).
		WithMetadata(map[string]any{
			"value":   value,
			"allowed": []string{string(VisibilityPublic), string(VisibilityPrivate), friendsOnlyAPISpelling},
		})
}

// IsValid reports whether v is one of the stored visibility values.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFriendsOnly:
		return true
	}
	return false
}

// APIValue returns the API spelling for the visibility value.
func (v Visibility) APIValue() string {
	if v == VisibilityFriendsOnly {
		return friendsOnlyAPISpelling
	}
	return string(v)
}

// MarshalJSON emits the API spelling.
func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.APIValue())
}

// UnmarshalJSON accepts both spellings and normalizes to the stored form.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseVisibility(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
