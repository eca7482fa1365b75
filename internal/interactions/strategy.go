// Package interactions implements the like and bookmark counters and comment
// counts shown on posts and projects.
package interactions

import "campusnet/internal/common"

type EntityKind string

const (
	KindPost    EntityKind = "post"
	KindProject EntityKind = "project"
)

type Action string

const (
	ActionLike     Action = "like"
	ActionBookmark Action = "bookmark"
)

// Target describes how an entity kind is addressed in the interaction tables.
type Target struct {
	Kind     EntityKind
	Column   string
	Entities string
}

// Table describes the store table backing an action.
type Table struct {
	Action Action
	Name   string
}

var targets = map[EntityKind]Target{
	KindPost:    {Kind: KindPost, Column: "post_id", Entities: "posts"},
	KindProject: {Kind: KindProject, Column: "project_id", Entities: "projects"},
}

var tables = map[Action]Table{
	ActionLike:     {Action: ActionLike, Name: "likes"},
	ActionBookmark: {Action: ActionBookmark, Name: "bookmarks"},
}

func TargetFor(kind EntityKind) (Target, error) {
	t, ok := targets[kind]
	if !ok {
		return Target{}, common.Errorf(common.KindValidationFailed, "interactions.target", "unknown entity kind %q", kind)
	}
	return t, nil
}

func TableFor(action Action) (Table, error) {
	t, ok := tables[action]
	if !ok {
		return Table{}, common.Errorf(common.KindValidationFailed, "interactions.table", "unknown action %q", action)
	}
	return t, nil
}

// kindFromRecord recovers the entity a change event refers to.
func kindFromRecord(value func(string) string) (EntityKind, string) {
	for kind, t := range targets {
		if id := value(t.Column); id != "" {
			return kind, id
		}
	}
	return "", ""
}
