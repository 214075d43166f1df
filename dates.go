package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	strftime "github.com/ncruces/go-strftime"
)

// NumericDateOrder fixes how NN/NN/YYYY dates are read.
type NumericDateOrder string

const (
	OrderMDY NumericDateOrder = "mdy"
	OrderDMY NumericDateOrder = "dmy"
)

var errUnrecognizedDate = errors.New("unrecognized date format")

var (
	isoLayouts    = []string{"2006-01-02", time.RFC3339}
	longUSLayouts = []string{"January 2, 2006", "Jan 2, 2006", "January 2 2006", "Jan 2 2006"}
	mdyLayout     = "1/2/2006"
	dmyLayout     = "2/1/2006"
)

// parseDate normalizes the accepted textual date shapes to a canonical date:
// midnight UTC of the calendar day. Numeric slash dates are read in the given
// order first; the other order is only tried when the preferred reading is
// not a real date.
func parseDate(s string, order NumericDateOrder) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errUnrecognizedDate
	}

	if strings.Contains(s, "/") {
		first, second := mdyLayout, dmyLayout
		if order == OrderDMY {
			first, second = dmyLayout, mdyLayout
		}
		if d, err := parseWithLayouts(s, first, second); err == nil {
			return d, nil
		}
		return time.Time{}, fmt.Errorf("%w: %q", errUnrecognizedDate, s)
	}

	if d, err := parseWithLayouts(s, isoLayouts...); err == nil {
		return d, nil
	}
	if d, err := parseLongUSDate(s); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", errUnrecognizedDate, s)
}

// parseLongUSDate accepts only the "Month D, YYYY" family. Used for legacy
// italic date markers, which never carried any other shape.
func parseLongUSDate(s string) (time.Time, error) {
	d, err := parseWithLayouts(strings.TrimSpace(s), longUSLayouts...)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errUnrecognizedDate, s)
	}
	return d, nil
}

func parseWithLayouts(s string, layouts ...string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return canonicalDate(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func canonicalDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// formatDate renders a date with a strftime pattern such as "%B %d, %Y".
func formatDate(d time.Time, pattern string) string {
	return strftime.Format(pattern, d)
}

func formatDateShort(d time.Time) string {
	return d.Format("Jan 2, 2006")
}
