package core

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var urlScheme = regexp.MustCompile(`(?i)^https?:`)

type urlReplacement struct {
	old string
	new string
}

// ReplaceURLVariants replaces every textual encoding variant of oldURL in
// content with a correspondingly transformed variant of newURL. The same
// logical URL can appear in markup in several encodings:
//
//   - exact form
//   - HTML-entity-encoded (& written as &amp;)
//   - percent-decoded form, when oldURL contains encoded characters
//   - percent-encoded path form, when the path contains characters worth
//     encoding
//   - protocol-relative form (//host/path)
//
// Replacement is literal substring substitution, longest variant first so a
// shorter variant never matches inside a longer one. The function is pure;
// worst case the content comes back unchanged.
func ReplaceURLVariants(content, oldURL, newURL string) string {
	if oldURL == "" {
		return content
	}

	replacements := []urlReplacement{{old: oldURL, new: newURL}}
	have := map[string]bool{oldURL: true}

	appendVariant := func(old, new string) {
		if old == "" || have[old] {
			return
		}
		have[old] = true
		replacements = append(replacements, urlReplacement{old: old, new: new})
	}

	// HTML-entity-encoded variant; the replacement stays entity-encoded.
	if encoded := strings.ReplaceAll(oldURL, "&", "&amp;"); encoded != oldURL {
		appendVariant(encoded, strings.ReplaceAll(newURL, "&", "&amp;"))
	}

	// Percent-decoded variant.
	if decoded, err := url.PathUnescape(oldURL); err == nil && decoded != oldURL {
		appendVariant(decoded, newURL)
	}

	// Percent-encoded path variant.
	if u, err := url.Parse(oldURL); err == nil && u.Path != "" {
		if encodedPath := encodePathSegments(u.Path); encodedPath != u.Path {
			appendVariant(strings.Replace(oldURL, u.Path, encodedPath, 1), newURL)
		}
	}

	// Protocol-relative variant; the replacement is protocol-relative too.
	if urlScheme.MatchString(oldURL) {
		appendVariant(urlScheme.ReplaceAllString(oldURL, ""), urlScheme.ReplaceAllString(newURL, ""))
	}

	// Longest first so partial matches never clobber a longer variant.
	sort.SliceStable(replacements, func(i, j int) bool {
		return len(replacements[i].old) > len(replacements[j].old)
	})

	for _, r := range replacements {
		content = strings.ReplaceAll(content, r.old, r.new)
	}

	return content
}

// encodePathSegments percent-encodes each path segment, leaving the slashes
// between them alone.
func encodePathSegments(urlPath string) string {
	segments := strings.Split(urlPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
