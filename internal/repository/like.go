package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// likeEscaper makes %, _ and the escape character itself match literally.
// '!' is used because MySQL and SQLite read a backslash in a string
// literal differently.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsFold matches rows whose column contains q, ignoring case.
// q is lower-cased and matched literally.
func containsFold(column, q string) sq.Sqlizer {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	return sq.Expr("LOWER("+column+") LIKE ? ESCAPE '!'", pattern)
}
