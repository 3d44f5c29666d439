package zoomify

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrBaseNotFound is returned when a page matches none of the known Zoomify
// embedding conventions.
var ErrBaseNotFound = errors.New("zoomify: no tile-set base directory found in page")

// matcher recognizes one historical Zoomify embedding convention. Group names
// the capture group holding the base path; 0 means the whole match.
type matcher struct {
	name  string
	re    *regexp.Regexp
	group int
}

func (m matcher) find(content string) (string, bool) {
	sub := m.re.FindStringSubmatch(content)
	if sub == nil {
		return "", false
	}
	// With alternated quote variants only one capture group is filled;
	// take the first non-empty one at or after the preferred index.
	for i := m.group; i < len(sub); i++ {
		if sub[i] != "" {
			return sub[i], true
		}
	}
	return "", false
}

// baseMatchers is the ordered list of embedding conventions, tried in
// sequence; the first match wins.
var baseMatchers = []matcher{
	{
		name:  "zoomifyImagePath",
		re:    regexp.MustCompile(`zoomifyImagePath=([^'"&]*)['"&]`),
		group: 1,
	},
	{
		name:  "ZoomifyCache",
		re:    regexp.MustCompile(`ZoomifyCache/[^'"&.]+\.\d+x\d+`),
		group: 0,
	},
	{
		// HTML5 Zoomify: a quoted path ending in /TileGroup0.
		name:  "TileGroup0",
		re:    regexp.MustCompile(`"([^"]+)/TileGroup0[^"]*"|'([^']+)/TileGroup0[^']*'`),
		group: 1,
	},
	{
		// JavaScript/HTML5 Zoomify v1.8: showImage("viewer", "path", ...).
		name:  "showImage",
		re:    regexp.MustCompile(`showImage\([^,]+, "([^"']+)"|showImage\([^,]+, '([^"']+)'`),
		group: 1,
	},
}

// LocateBase scans page HTML for a Zoomify tile-set base directory. The
// returned path may be relative to the page; see ResolveBase.
func LocateBase(pageHTML string) (string, error) {
	for _, m := range baseMatchers {
		if found, ok := m.find(pageHTML); ok {
			return found, nil
		}
	}
	return "", ErrBaseNotFound
}

// ResolveBase makes a discovered base path absolute. An already-absolute path
// is returned unchanged. A relative one is joined onto the page URL with its
// trailing file segment (a last path element containing a dot) removed.
func ResolveBase(pageURL, found string) (string, error) {
	fu, err := url.Parse(found)
	if err != nil {
		return "", fmt.Errorf("zoomify: parse discovered path %q: %w", found, err)
	}
	if fu.Host != "" {
		return found, nil
	}

	pu, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("zoomify: parse page URL %q: %w", pageURL, err)
	}

	parts := strings.Split(pu.Path, "/")
	if len(parts) > 0 && strings.Contains(parts[len(parts)-1], ".") {
		parts = parts[:len(parts)-1]
	}

	base := url.URL{
		Scheme: pu.Scheme,
		Host:   pu.Host,
		Path:   strings.Join(parts, "/"),
	}
	return JoinURL(base.String(), found), nil
}
