package release

import "strings"

// tagPrefixes are the known prefixes release tags carry in front of the
// version number, longest first.
var tagPrefixes = []string{"skiff-v", "skiff-", "v", "V"}

// NormalizeTag strips known prefixes from a release tag to get the
// comparable version string. Versions are equal only by exact string match
// after normalization; no ordering is implied.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	for _, p := range tagPrefixes {
		if strings.HasPrefix(tag, p) {
			return tag[len(p):]
		}
	}
	return tag
}
