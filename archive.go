package main

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strconv"
)

const undatedYear = 0

type yearWithPosts struct {
	Year  int // undatedYear for posts without a date
	Posts posts
}

func (y yearWithPosts) Label() string {
	if y.Year == undatedYear {
		return "Undated"
	}
	return strconv.Itoa(y.Year)
}

func (y yearWithPosts) EarliestDateFormatted() string {
	return formatDateShort(y.Posts.earliestDate())
}

func (y yearWithPosts) LatestDateFormatted() string {
	return formatDateShort(y.Posts.latestDate())
}

// Posts grouped by year, newest year first and undated posts last. Create with
// groupByYear, which sorts like this.
type postsByYear []yearWithPosts

func (py *postsByYear) addPost(year int, p *post) {
	for i, y := range *py {
		if y.Year == year {
			(*py)[i].Posts = append(y.Posts, p)
			return
		}
	}
	*py = append(*py, yearWithPosts{Year: year, Posts: posts{p}})
}

func groupByYear(ps posts) postsByYear {
	byYear := make(postsByYear, 0, 10)
	for _, p := range ps {
		year := undatedYear
		if p.HasDate() {
			year = p.Date.Year()
		}
		byYear.addPost(year, p)
	}

	slices.SortFunc(byYear, func(a, b yearWithPosts) int {
		switch {
		case a.Year == b.Year:
			return 0
		case a.Year == undatedYear:
			return 1
		case b.Year == undatedYear:
			return -1
		}
		return cmp.Compare(b.Year, a.Year)
	})
	for _, y := range byYear {
		y.Posts.sort()
	}
	return byYear
}

// String renders the archive as the list command prints it.
func (py postsByYear) String() string {
	b := new(bytes.Buffer)
	for i, y := range py {
		if i > 0 {
			b.WriteString("\n")
		}
		if y.Year == undatedYear {
			fmt.Fprintf(b, "%s (%d)\n", y.Label(), len(y.Posts))
		} else {
			fmt.Fprintf(b, "%s (%d, %s to %s)\n", y.Label(), len(y.Posts),
				y.EarliestDateFormatted(), y.LatestDateFormatted())
		}
		for _, p := range y.Posts {
			date := "unknown"
			switch {
			case p.HasDate():
				date = formatDateShort(p.Date)
			case p.DateText != "":
				date = strconv.Quote(p.DateText)
			}
			fmt.Fprintf(b, "  %-12s  %s  (%s)\n", date, p.Title, p.SourcePath)
		}
	}
	return b.String()
}
