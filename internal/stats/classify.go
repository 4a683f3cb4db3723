package stats

import "strings"

// PR type buckets.
const (
	TypeFeatures      = "features"
	TypeFixes         = "fixes"
	TypeRefactors     = "refactors"
	TypeChores        = "chores"
	TypeDocumentation = "documentation"
	TypeTests         = "tests"
	TypeOther         = "other"
)

// typePrefixes are tested in order; the first match wins.
var typePrefixes = []struct {
	prefix string
	kind   string
}{
	{"feat", TypeFeatures},
	{"fix", TypeFixes},
	{"refactor", TypeRefactors},
	{"chore", TypeChores},
	{"docs", TypeDocumentation},
	{"test", TypeTests},
}

// TypeOrder is the display order of PR types.
var TypeOrder = []string{TypeFeatures, TypeFixes, TypeRefactors, TypeChores, TypeDocumentation, TypeTests, TypeOther}

// ClassifyTitle buckets a PR by the conventional-commit style prefix of its title.
func ClassifyTitle(title string) string {
	lower := strings.ToLower(title)
	for _, p := range typePrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.kind
		}
	}
	return TypeOther
}
