package backend

import "strings"

var sqlReplacer = strings.NewReplacer(
	"\n", " ",
	"\t", " ",
	`"`, "%22",
)

// NormalizeSQL flattens newlines and tabs to spaces, encodes double quotes
// as %22 and trims surrounding whitespace. Applying it twice yields the same
// result as applying it once.
func NormalizeSQL(sql string) string {
	return strings.TrimSpace(sqlReplacer.Replace(sql))
}
