package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/docsearch/db/kvdb"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestService(t *testing.T, limit int) *Service {
	testLogger := newTestLogger()
	db, err := kvdb.New(testLogger, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(testLogger, db, limit)
}

type testCase struct {
	name     string
	limit    int
	queries  []string
	expected []string
}

var recordTestCases = []testCase{
	{
		name:     "NewestFirst",
		queries:  []string{"alpha", "beta", "gamma"},
		expected: []string{"gamma", "beta", "alpha"},
	},
	{
		name:     "DuplicateKeepsPlace",
		queries:  []string{"alpha", "beta", "alpha"},
		expected: []string{"beta", "alpha"},
	},
	{
		name:     "CaseDistinct",
		queries:  []string{"Alpha", "alpha"},
		expected: []string{"alpha", "Alpha"},
	},
	{
		name:     "EmptyIgnoredWhitespaceKept",
		queries:  []string{"alpha", "   ", ""},
		expected: []string{"   ", "alpha"},
	},
	{
		name:     "CappedAtLimit",
		limit:    3,
		queries:  []string{"q1", "q2", "q3", "q4", "q5"},
		expected: []string{"q5", "q4", "q3"},
	},
}

func TestRecord(t *testing.T) {
	for _, tc := range recordTestCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			service := newTestService(t, tc.limit)
			for _, query := range tc.queries {
				assert.NoError(service.Record(query))
			}
			recent, err := service.Recent()
			assert.NoError(err)
			assert.Equal(tc.expected, recent)
		})
	}
}

func TestDefaultLimitIsTen(t *testing.T) {
	assert := require.New(t)
	service := newTestService(t, 0)
	for i := 1; i <= 15; i++ {
		assert.NoError(service.Record(fmt.Sprintf("query %d", i)))
	}
	recent, err := service.Recent()
	assert.NoError(err)
	assert.Len(recent, DefaultLimit)
	assert.Equal("query 15", recent[0])
	assert.Equal("query 6", recent[DefaultLimit-1])
}

func TestEvictedQueryCanReturn(t *testing.T) {
	assert := require.New(t)
	service := newTestService(t, 2)
	for _, query := range []string{"a", "b", "c", "a"} {
		assert.NoError(service.Record(query))
	}
	recent, err := service.Recent()
	assert.NoError(err)
	assert.Equal([]string{"a", "c"}, recent)
}

func TestClear(t *testing.T) {
	assert := require.New(t)
	service := newTestService(t, 0)
	assert.NoError(service.Record("alpha"))
	assert.NoError(service.Clear())
	recent, err := service.Recent()
	assert.NoError(err)
	assert.Empty(recent)

	assert.NoError(service.Record("beta"))
	recent, err = service.Recent()
	assert.NoError(err)
	assert.Equal([]string{"beta"}, recent)
}
