package core

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractOptions controls which external file references are reported.
type ExtractOptions struct {
	// Extensions are the file extensions to look for, without leading dots.
	Extensions []string
	// AllowedHosts optionally restricts results to URLs starting with one of
	// these prefixes. Empty means no restriction.
	AllowedHosts []string
	// LocalBaseURL is the base URL of the local asset store. URLs under it
	// are never reported, so already-local files are not re-imported.
	LocalBaseURL string
}

// FileRef is one external file reference found in document content.
type FileRef struct {
	URL      string
	Filename string
}

// ExtractFileURLs scans document content for references to externally hosted
// files. Several independent strategies run over the same content and their
// results are merged, deduplicated on a trailing-slash-normalized URL, in
// first-seen order:
//
//  1. bare-URL regex scan for http(s) URLs ending in a configured extension
//  2. href/src attributes of anchor, image, video, audio and source tags
//  3. srcset attributes of image and source tags
//  4. CSS background-image: url(...) occurrences
//
// This is best-effort pattern extraction over HTML-like text, not HTML
// validation; URLs that fail path parsing are silently dropped.
func ExtractFileURLs(content string, opts ExtractOptions) []FileRef {
	extensions := normalizeExtensions(opts.Extensions)
	if len(extensions) == 0 {
		return nil
	}

	// Longest extension first so e.g. "docx" wins over a "doc" prefix match.
	sort.SliceStable(extensions, func(i, j int) bool {
		return len(extensions[i]) > len(extensions[j])
	})

	quoted := make([]string, len(extensions))
	for i, ext := range extensions {
		quoted[i] = regexp.QuoteMeta(ext)
	}
	extGroup := strings.Join(quoted, "|")

	c := &extractCollector{
		opts:     opts,
		extCheck: regexp.MustCompile(`(?i)\.(` + extGroup + `)(\b|$)`),
		seen:     make(map[string]bool),
	}

	// Strategy 1: bare URLs ending in a configured extension.
	rawPattern := regexp.MustCompile(`(?i)https?://[^\s<>"']+\.(` + extGroup + `)`)
	for _, match := range rawPattern.FindAllString(content, -1) {
		c.add(match)
	}

	// Strategies 2-3 need parsed markup. Parse failures fall through to the
	// regex-only results.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		// Strategy 2: href/src attributes of link and media tags.
		attrTargets := []struct {
			selector string
			attr     string
		}{
			{"a[href]", "href"},
			{"img[src]", "src"},
			{"video[src]", "src"},
			{"audio[src]", "src"},
			{"source[src]", "src"},
		}
		for _, target := range attrTargets {
			doc.Find(target.selector).Each(func(_ int, s *goquery.Selection) {
				value, _ := s.Attr(target.attr)
				c.addChecked(value)
			})
		}

		// Strategy 3: srcset attributes, comma-separated "url descriptor"
		// entries on responsive images and picture sources.
		for _, selector := range []string{"img[srcset]", "source[srcset]"} {
			doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
				srcset, _ := s.Attr("srcset")
				for _, entry := range strings.Split(srcset, ",") {
					fields := strings.Fields(entry)
					if len(fields) == 0 {
						continue
					}
					c.addChecked(fields[0])
				}
			})
		}
	}

	// Strategy 4: CSS background images in style attributes and style blocks.
	bgPattern := regexp.MustCompile(`(?i)background-image:\s*url\(\s*['"]?(https?://[^'")\s]+)['"]?\s*\)`)
	for _, match := range bgPattern.FindAllStringSubmatch(content, -1) {
		c.addChecked(match[1])
	}

	return c.files
}

type extractCollector struct {
	opts     ExtractOptions
	extCheck *regexp.Regexp
	seen     map[string]bool
	files    []FileRef
}

// add records a URL already known to end in a configured extension.
func (c *extractCollector) add(rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return
	}
	c.record(rawURL, u.Path)
}

// addChecked records a URL only if it is absolute http(s) and its path
// component matches a configured extension.
func (c *extractCollector) addChecked(rawURL string) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(strings.ToLower(rawURL), "http") {
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return
	}
	if !c.extCheck.MatchString(u.Path) {
		return
	}
	c.record(rawURL, u.Path)
}

func (c *extractCollector) record(rawURL, urlPath string) {
	if !shouldIncludeURL(rawURL, c.opts) {
		return
	}
	normalized := normalizeURL(rawURL)
	if c.seen[normalized] {
		return
	}
	c.seen[normalized] = true
	c.files = append(c.files, FileRef{
		URL:      rawURL,
		Filename: path.Base(urlPath),
	})
}

// shouldIncludeURL applies the allow-list prefix filter and the local store
// exclusion.
func shouldIncludeURL(rawURL string, opts ExtractOptions) bool {
	if len(opts.AllowedHosts) > 0 {
		matchesAny := false
		for _, base := range opts.AllowedHosts {
			if base != "" && strings.HasPrefix(rawURL, base) {
				matchesAny = true
				break
			}
		}
		if !matchesAny {
			return false
		}
	}
	if opts.LocalBaseURL != "" && strings.Contains(rawURL, opts.LocalBaseURL) {
		return false
	}
	return true
}

// normalizeURL strips a trailing slash for deduplication purposes. The
// normalized form is never persisted.
func normalizeURL(rawURL string) string {
	return strings.TrimRight(rawURL, "/")
}

func normalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
