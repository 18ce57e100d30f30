package naming

import (
	"regexp"
	"strings"
)

// Partition names are namespaced so tenant collections never collide with
// the master database's own collections.
const partitionPrefix = "org_"

var (
	joinRuns     = regexp.MustCompile(`[\s-]+`)
	invalidChars = regexp.MustCompile(`[^a-z0-9_]`)
	underscores  = regexp.MustCompile(`_+`)
)

// Resolve maps an organization display name to its storage partition
// identifier. Deterministic and side-effect free: lowercase, whitespace and
// hyphens become underscores, anything outside [a-z0-9_] is stripped,
// underscore runs collapse, and leading/trailing underscores are trimmed.
//
// An all-symbol name resolves to the bare prefix "org_". Two exotic names
// can therefore map to the same partition id; uniqueness is enforced on the
// organization name in the directory, not on the partition id.
func Resolve(name string) string {
	slug := strings.ToLower(name)
	slug = joinRuns.ReplaceAllString(slug, "_")
	slug = invalidChars.ReplaceAllString(slug, "")
	slug = underscores.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	return partitionPrefix + slug
}
