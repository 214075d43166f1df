package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate_AllShapesAgree(t *testing.T) {
	want := day(2024, time.March, 18)
	for _, s := range []string{
		"March 18, 2024",
		"Mar 18, 2024",
		"2024-03-18",
		"03/18/2024",
		"3/18/2024",
		"  2024-03-18  ",
	} {
		got, err := parseDate(s, OrderMDY)
		require.NoError(t, err, s)
		require.True(t, want.Equal(got), "%q parsed as %v", s, got)
	}
}

func TestParseDate_DayFirstWhenConfigured(t *testing.T) {
	got, err := parseDate("18/03/2024", OrderDMY)
	require.NoError(t, err)
	require.Equal(t, day(2024, time.March, 18), got)

	got, err = parseDate("04/03/2024", OrderDMY)
	require.NoError(t, err)
	require.Equal(t, day(2024, time.March, 4), got)
}

func TestParseDate_AmbiguousFollowsPreferredOrder(t *testing.T) {
	got, err := parseDate("04/03/2024", OrderMDY)
	require.NoError(t, err)
	require.Equal(t, day(2024, time.April, 3), got)
}

func TestParseDate_FallsBackWhenPreferredOrderIsImpossible(t *testing.T) {
	got, err := parseDate("18/03/2024", OrderMDY)
	require.NoError(t, err)
	require.Equal(t, day(2024, time.March, 18), got)

	got, err = parseDate("03/18/2024", OrderDMY)
	require.NoError(t, err)
	require.Equal(t, day(2024, time.March, 18), got)
}

func TestParseDate_RFC3339IsTruncatedToTheDay(t *testing.T) {
	got, err := parseDate("2024-03-18T22:15:00Z", OrderMDY)
	require.NoError(t, err)
	require.Equal(t, day(2024, time.March, 18), got)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "yesterday", "13/13/2024", "2024-02-30", "March 32, 2024"} {
		_, err := parseDate(s, OrderMDY)
		require.Error(t, err, s)
		require.True(t, errors.Is(err, errUnrecognizedDate), s)
	}
}

func TestParseLongUSDate_RejectsOtherShapes(t *testing.T) {
	_, err := parseLongUSDate("2024-03-18")
	require.Error(t, err)

	got, err := parseLongUSDate("January 5, 2023")
	require.NoError(t, err)
	require.Equal(t, day(2023, time.January, 5), got)
}

func TestFormatDate(t *testing.T) {
	d := day(2024, time.March, 5)
	require.Equal(t, "March 05, 2024", formatDate(d, "%B %d, %Y"))
	require.Equal(t, "2024-03-05", formatDate(d, "%Y-%m-%d"))
	require.Equal(t, "Mar 5, 2024", formatDateShort(d))
}
