package feed

import (
	"strings"

	"gorm.io/gorm"

	"campusnet/internal/dbmysql"
)

// anyValue is what pickers send when no branch or college is chosen.
const anyValue = "All"

// PostFilter narrows the timeline. Zero fields are ignored.
type PostFilter struct {
	Branch string
	// Search matches the caption, ignoring case.
	Search string
	// College keeps posts whose author studies there.
	College string
	// ExcludeCollege drops posts whose author studies there.
	ExcludeCollege string
	// AlumniBefore keeps authors whose batch ended before the given year.
	AlumniBefore int
}

func pick(s string) string {
	s = strings.TrimSpace(s)
	if s == anyValue {
		return ""
	}
	return s
}

func (f PostFilter) normalized() PostFilter {
	f.Branch = pick(f.Branch)
	f.Search = strings.TrimSpace(f.Search)
	f.College = pick(f.College)
	f.ExcludeCollege = pick(f.ExcludeCollege)
	return f
}

func (f PostFilter) byAuthor() bool {
	return f.College != "" || f.ExcludeCollege != "" || f.AlumniBefore > 0
}

// scope applies the filter to a posts query. Author filters join users, so
// every column is qualified.
func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.byAuthor() {
		db = db.Select("posts.*").Joins("JOIN users ON users.id = posts.user_id")
	}
	if f.Branch != "" {
		db = db.Where("posts.branch = ?", f.Branch)
	}
	if f.Search != "" {
		db = db.Where("LOWER(posts.caption) LIKE ? ESCAPE '"+dbmysql.LikeEscape+"'", dbmysql.ContainsPattern(f.Search))
	}
	if f.College != "" {
		db = db.Where("users.college = ?", f.College)
	}
	if f.ExcludeCollege != "" {
		db = db.Where("users.college <> ?", f.ExcludeCollege)
	}
	if f.AlumniBefore > 0 {
		db = db.Where("users.batch_end IS NOT NULL AND users.batch_end < ?", f.AlumniBefore)
	}
	return db
}

// page clamps paging arguments to the timeline's limits.
func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultTimelineSize
	}
	return min(limit, maxTimelineSize), max(offset, 0)
}
