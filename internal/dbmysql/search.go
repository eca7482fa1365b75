package dbmysql

import "strings"

// LikeEscape is the escape character ContainsPattern uses. Queries must say
// ESCAPE '!' so MySQL and SQLite read the pattern the same way.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsPattern turns user input into a lower-cased LIKE pattern matching
// any value that contains it.
func ContainsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
