package share

import (
	"campusnet/internal/common"
)

type Kind string

const (
	KindNone    Kind = ""
	KindPost    Kind = "post"
	KindProject Kind = "project"
	KindUser    Kind = "user"
)

// Ref points a message at a shared post, project or user profile.
type Ref struct {
	Kind Kind   `json:"kind,omitempty"`
	ID   string `json:"id,omitempty"`
}

func PostRef(id string) Ref    { return Ref{Kind: KindPost, ID: id} }
func ProjectRef(id string) Ref { return Ref{Kind: KindProject, ID: id} }
func UserRef(id string) Ref    { return Ref{Kind: KindUser, ID: id} }

func (r Ref) IsZero() bool {
	return r.Kind == KindNone || r.ID == ""
}

func (r Ref) Validate() error {
	switch r.Kind {
	case KindNone:
		if r.ID != "" {
			return common.Errorf(common.KindValidationFailed, "share.Ref", "id %q without a kind", r.ID)
		}
		return nil
	case KindPost, KindProject, KindUser:
		if r.ID == "" {
			return common.Errorf(common.KindValidationFailed, "share.Ref", "%s reference without an id", r.Kind)
		}
		return nil
	}
	return common.Errorf(common.KindValidationFailed, "share.Ref", "unknown kind %q", r.Kind)
}

// Columns maps the reference onto the shared_post_id / shared_project_id /
// shared_user_id columns.
func (r Ref) Columns() (postID, projectID, userID *string) {
	if r.IsZero() {
		return nil, nil, nil
	}
	id := r.ID
	switch r.Kind {
	case KindPost:
		postID = &id
	case KindProject:
		projectID = &id
	case KindUser:
		userID = &id
	}
	return postID, projectID, userID
}

// RefFromColumns rejects rows that set more than one shared column.
func RefFromColumns(postID, projectID, userID *string) (Ref, error) {
	refs := make([]Ref, 0, 1)
	if set(postID) {
		refs = append(refs, PostRef(*postID))
	}
	if set(projectID) {
		refs = append(refs, ProjectRef(*projectID))
	}
	if set(userID) {
		refs = append(refs, UserRef(*userID))
	}

	switch len(refs) {
	case 0:
		return Ref{}, nil
	case 1:
		return refs[0], nil
	}
	return Ref{}, common.Errorf(common.KindValidationFailed, "share.RefFromColumns", "%d shared references set, at most one allowed", len(refs))
}

// ParseColumns reads stored rows. Rows written before the single-reference
// rule may carry several; the user profile wins, then the project, then the post.
func ParseColumns(postID, projectID, userID *string) Ref {
	switch {
	case set(userID):
		return UserRef(*userID)
	case set(projectID):
		return ProjectRef(*projectID)
	case set(postID):
		return PostRef(*postID)
	}
	return Ref{}
}

func set(s *string) bool {
	return s != nil && *s != ""
}
