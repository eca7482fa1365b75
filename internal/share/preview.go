package share

import (
	"time"

	"campusnet/internal/common"
)

// Preview is what a chat renders for a shared reference.
type Preview struct {
	Ref         Ref             `json:"ref"`
	Unavailable bool            `json:"unavailable"`
	Post        *PostPreview    `json:"post,omitempty"`
	Project     *ProjectPreview `json:"project,omitempty"`
	User        *UserPreview    `json:"user,omitempty"`
}

type PostPreview struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorPhoto *string   `json:"author_photo,omitempty"`
	Caption     *string   `json:"caption,omitempty"`
	MediaURL    *string   `json:"media_url,omitempty"`
	IsVideo     bool      `json:"is_video"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProjectPreview struct {
	ID          string  `json:"id"`
	AuthorID    string  `json:"author_id"`
	AuthorName  string  `json:"author_name"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	HasArchive  bool    `json:"has_archive"`
}

type UserPreview struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Photo   *string `json:"photo,omitempty"`
	College string  `json:"college"`
	Branch  *string `json:"branch,omitempty"`
}

// Label is the one-line text shown above a shared item.
func (p Preview) Label() string {
	if p.Unavailable {
		switch p.Ref.Kind {
		case KindPost:
			return "Post unavailable"
		case KindProject:
			return "Project unavailable"
		case KindUser:
			return "User unavailable"
		}
		return ""
	}
	switch p.Ref.Kind {
	case KindPost:
		return "Shared a post"
	case KindProject:
		return "Shared a project"
	case KindUser:
		return "Shared a profile"
	}
	return ""
}

func isVideoURL(u *string) bool {
	return u != nil && common.IsVideoURL(*u)
}
