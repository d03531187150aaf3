package share_test

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    share.Visibility
		wantErr bool
	}{
		{name: "public", input: "public", want: share.VisibilityPublic},
		{name: "private", input: "private", want: share.VisibilityPrivate},
		{name: "friends-only API spelling", input: "friends-only", want: share.VisibilityFriendsOnly},
		{name: "friends_only stored spelling", input: "friends_only", want: share.VisibilityFriendsOnly},
		{name: "unknown value", input: "everyone", wantErr: true},
		{name: "empty value", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := share.ParseVisibility(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestVisibilityAPIValue(t *testing.T) {
	assert.Equal(t, "public", share.VisibilityPublic.APIValue())
	assert.Equal(t, "private", share.VisibilityPrivate.APIValue())
	assert.Equal(t, "friends-only", share.VisibilityFriendsOnly.APIValue())
}

func TestVisibilityJSON(t *testing.T) {
	t.Run("marshals to the API spelling", func(t *testing.T) {
		out, err := json.Marshal(share.VisibilityFriendsOnly)
		require.NoError(t, err)
		assert.Equal(t, `"friends-only"`, string(out))
	})

	t.Run("unmarshals both spellings", func(t *testing.T) {
		var v share.Visibility

		require.NoError(t, json.Unmarshal([]byte(`"friends-only"`), &v))
		assert.Equal(t, share.VisibilityFriendsOnly, v)

		require.NoError(t, json.Unmarshal([]byte(`"friends_only"`), &v))
		assert.Equal(t, share.VisibilityFriendsOnly, v)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		var v share.Visibility
		assert.Error(t, json.Unmarshal([]byte(`"everyone"`), &v))
	})
}
