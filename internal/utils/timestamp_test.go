package utils

import (
	"testing"
	"time"

	"github.com/gnomegl/labslurp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("2024-02-29", false)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T00:00:00Z", got)

	got, err = NormalizeDate(" 2024-02-29 ", true)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T23:59:59Z", got)

	got, err = NormalizeDate("", true)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NormalizeDate("2023-02-29", false)
	assert.Error(t, err)
}

func TestParseWindow_DropsMalformedBound(t *testing.T) {
	window, warnings := ParseWindow("2024-13-40", "2024-06-30")

	assert.Empty(t, window.Since)
	assert.Equal(t, "2024-06-30T23:59:59Z", window.Until)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "--since")
}

func TestParseWindow_Unbounded(t *testing.T) {
	window, warnings := ParseWindow("", "")
	assert.Equal(t, models.TimeWindow{}, window)
	assert.Empty(t, warnings)
}

func TestDescribeWindow(t *testing.T) {
	assert.Equal(t, "all time", DescribeWindow(models.TimeWindow{}))
	assert.Equal(t, "since 2024-01-01", DescribeWindow(models.TimeWindow{Since: "2024-01-01T00:00:00Z"}))
	assert.Equal(t, "until 2024-02-01", DescribeWindow(models.TimeWindow{Until: "2024-02-01T23:59:59Z"}))
	assert.Equal(t, "2024-01-01 to 2024-02-01", DescribeWindow(models.TimeWindow{
		Since: "2024-01-01T00:00:00Z",
		Until: "2024-02-01T23:59:59Z",
	}))
}

func TestAnalyzeActivity(t *testing.T) {
	sat := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	mon := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	commits := []*models.Commit{
		{CommittedDate: sat},
		{CommittedDate: mon},
		{CommittedDate: mon.Add(24 * 7 * time.Hour)},
		{},
	}

	p := AnalyzeActivity(commits)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 10, p.MostActiveHour)
	assert.Equal(t, time.Monday, p.MostActiveDay)
	assert.Equal(t, 1, p.WeekendCommits)
	assert.Equal(t, 1, p.NightCommits)
}
