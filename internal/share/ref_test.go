package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusnet/internal/common"
)

func strp(s string) *string { return &s }

func TestRefFromColumns(t *testing.T) {
	tests := []struct {
		name                string
		post, project, user *string
		want                Ref
		wantErr             bool
	}{
		{name: "none"},
		{name: "empty strings are unset", post: strp(""), user: strp(""), want: Ref{}},
		{name: "post", post: strp("p1"), want: PostRef("p1")},
		{name: "project", project: strp("pr1"), want: ProjectRef("pr1")},
		{name: "user", user: strp("u1"), want: UserRef("u1")},
		{name: "two set", post: strp("p1"), user: strp("u1"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RefFromColumns(tt.post, tt.project, tt.user)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColumns_Precedence(t *testing.T) {
	assert.Equal(t, UserRef("u1"), ParseColumns(strp("p1"), strp("pr1"), strp("u1")))
	assert.Equal(t, ProjectRef("pr1"), ParseColumns(strp("p1"), strp("pr1"), nil))
	assert.Equal(t, PostRef("p1"), ParseColumns(strp("p1"), nil, nil))
	assert.True(t, ParseColumns(nil, nil, nil).IsZero())
}

func TestRef_Columns(t *testing.T) {
	post, project, user := ProjectRef("pr1").Columns()
	assert.Nil(t, post)
	assert.Nil(t, user)
	require.NotNil(t, project)
	assert.Equal(t, "pr1", *project)

	post, project, user = Ref{}.Columns()
	assert.Nil(t, post)
	assert.Nil(t, project)
	assert.Nil(t, user)
}

func TestRef_Validate(t *testing.T) {
	assert.NoError(t, Ref{}.Validate())
	assert.NoError(t, PostRef("p").Validate())
	assert.Error(t, Ref{Kind: KindPost}.Validate())
	assert.Error(t, Ref{ID: "x"}.Validate())
	assert.Error(t, Ref{Kind: "story", ID: "s"}.Validate())
}

func TestPreview_Label(t *testing.T) {
	assert.Equal(t, "Shared a post", Preview{Ref: PostRef("p")}.Label())
	assert.Equal(t, "Shared a project", Preview{Ref: ProjectRef("p")}.Label())
	assert.Equal(t, "Shared a profile", Preview{Ref: UserRef("u")}.Label())
	assert.Equal(t, "Post unavailable", Preview{Ref: PostRef("p"), Unavailable: true}.Label())
	assert.Equal(t, "Project unavailable", Preview{Ref: ProjectRef("p"), Unavailable: true}.Label())
	assert.Equal(t, "User unavailable", Preview{Ref: UserRef("u"), Unavailable: true}.Label())
	assert.Empty(t, Preview{}.Label())
}

func TestIsVideoURL(t *testing.T) {
	assert.True(t, isVideoURL(strp("https://cdn/x/clip.MP4?token=1")))
	assert.False(t, isVideoURL(strp("https://cdn/x/photo.jpg")))
	assert.False(t, isVideoURL(nil))
}
