package main

import (
	"errors"
	"fmt"
	"strings"
)

const (
	recentPostsBegin   = "<!-- BEGIN RECENT POSTS -->"
	recentPostsEnd     = "<!-- END RECENT POSTS -->"
	recentPostsHeading = "## Recent Posts"
)

var (
	errEndWithoutBegin = errors.New("end marker found without a begin marker")
	errBeginWithoutEnd = errors.New("begin marker found without an end marker")
	errDuplicateMarker = errors.New("marker appears more than once")
)

// line is one line of a document including its terminator.
type line struct {
	start int
	text  string
}

func splitLines(doc string) []line {
	var lines []line
	for start := 0; start < len(doc); {
		end := strings.IndexByte(doc[start:], '\n')
		if end < 0 {
			lines = append(lines, line{start, doc[start:]})
			break
		}
		lines = append(lines, line{start, doc[start : start+end+1]})
		start += end + 1
	}
	return lines
}

func (l line) trimmed() string {
	return strings.TrimSpace(l.text)
}

// findMarkers returns the line indexes of the begin and end markers, or -1 for
// both when the document carries neither.
func findMarkers(lines []line, begin, end string) (int, int, error) {
	b, e := -1, -1
	for i, l := range lines {
		switch l.trimmed() {
		case begin:
			if b >= 0 {
				return 0, 0, fmt.Errorf("%w: %s", errDuplicateMarker, begin)
			}
			b = i
		case end:
			if e >= 0 {
				return 0, 0, fmt.Errorf("%w: %s", errDuplicateMarker, end)
			}
			if b < 0 {
				return 0, 0, errEndWithoutBegin
			}
			e = i
		}
	}
	if b >= 0 && e < 0 {
		return 0, 0, errBeginWithoutEnd
	}
	return b, e, nil
}

// spliceRegion replaces everything between the begin and end marker lines
// with content. The marker lines themselves and all text outside them are
// kept byte for byte. found is false when neither marker is present.
func spliceRegion(doc, begin, end, content string) (out string, found bool, err error) {
	lines := splitLines(doc)
	b, e, err := findMarkers(lines, begin, end)
	if err != nil {
		return "", false, err
	}
	if b < 0 {
		return doc, false, nil
	}

	beginLine := lines[b]
	regionStart := beginLine.start + len(beginLine.text)
	regionEnd := lines[e].start

	return doc[:regionStart] + content + doc[regionEnd:], true, nil
}

// recentPostsRegion wraps the rendered listing in the markers.
func recentPostsRegion(listing string) string {
	return recentPostsBegin + "\n" + recentPostsBody(listing) + recentPostsEnd + "\n"
}

func recentPostsBody(listing string) string {
	if listing == "" {
		return ""
	}
	return "\n" + strings.TrimRight(listing, "\n") + "\n\n"
}

// updateHomepage puts the listing into doc. Documents written by older
// versions of the template have a bare "## Recent Posts" heading followed by
// generated entries up to the end of file; that tail is replaced once by a
// marked region. Documents with neither get the section appended.
func updateHomepage(doc, listing string) (string, error) {
	out, found, err := spliceRegion(doc, recentPostsBegin, recentPostsEnd, recentPostsBody(listing))
	if err != nil {
		return "", err
	}
	if found {
		return out, nil
	}

	section := recentPostsHeading + "\n\n" + recentPostsRegion(listing)
	for _, l := range splitLines(doc) {
		if l.trimmed() == recentPostsHeading {
			return doc[:l.start] + section, nil
		}
	}

	doc = strings.TrimRight(doc, "\n")
	if doc == "" {
		return section, nil
	}
	return doc + "\n\n" + section, nil
}

// newHomepage is the content written when the homepage does not exist yet.
func newHomepage(title string) string {
	if title == "" {
		title = "My Blog"
	}
	return "# " + title + "\n"
}
