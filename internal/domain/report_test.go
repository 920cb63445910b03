package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		URL:        "https://example.test/list/",
		Source:     SourceFetch,
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Summary:    ReportSummary{Extracted: 3},
		Skipped: []SkippedItem{
			{Index: 4, Reason: "b"},
			{Index: 1, Reason: "a"},
		},
	}

	r.Finalize()

	assert.Equal(t, 1, r.Skipped[0].Index, "skipped 应按 index 排序")
	assert.Equal(t, 4, r.Skipped[1].Index)
	assert.Equal(t, ReportSummary{Items: 5, Extracted: 3, Skipped: 2}, r.Summary)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"started_at":"2026-02-09T02:00:00Z"`, "started_at 不是 UTC RFC3339")
}

func TestRunReport_Finalize_NilSkippedBecomesEmpty(t *testing.T) {
	r := RunReport{}
	r.Finalize()

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"skipped":[]`)
}

func TestMovieRecord_EmptySlicesMarshalAsArrays(t *testing.T) {
	m := NewMovieRecord()

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"genres":[]`)
	assert.Contains(t, string(b), `"id":null`)
	assert.Contains(t, string(b), `"imdb_rating":null`)
}

func TestMovieRecord_AddGenreKeepsParallel(t *testing.T) {
	m := NewMovieRecord()
	href := "https://example.test/genre/drama/"
	m.AddGenre("Drama", &href)
	m.AddGenre("Comedy", nil)

	require.Len(t, m.Genres, 2)
	require.Len(t, m.Links.Genres, 2)
	assert.Equal(t, "Drama", m.Genres[0])
	assert.Equal(t, href, *m.Links.Genres[0])
	assert.Nil(t, m.Links.Genres[1])
}

func TestNewCatalog_NilMovies(t *testing.T) {
	b, err := json.Marshal(NewCatalog(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"movies":[]}`, string(b))
}
