package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/repository"
)

func TestSeedPopulatesEmptyCatalog(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	seeder := NewSeedService(e.downloadRepository, repository.NewCategoryRepository(e.db), 42)

	res, err := seeder.Seed(ctx, 200, time.Now())
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Success: true, Message: "Seeded 200 downloads with categories and tags"}, res)

	stats, err := e.catalog.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, stats.Total)
	assert.Equal(t, map[string]int{"game": 60, "software": 48, "movie": 52, "tv_show": 40}, stats.ByType)
	assert.Equal(t, len(defaultCategories), e.count(t, "categories"))

	tags, err := e.catalog.PopularTags(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, tags, 5)

	res, err = seeder.Seed(ctx, 200, time.Now())
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Success: false, Message: "Database already has 200 items"}, res)
}

func TestSeedGeneratorIsDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a, err := newSeedGenerator(7, now).generate(50)
	require.NoError(t, err)
	b, err := newSeedGenerator(7, now).generate(50)
	require.NoError(t, err)

	require.Len(t, a, 50)
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].DownloadLink, b[i].DownloadLink)
		assert.Equal(t, a[i].SubmissionDate, b[i].SubmissionDate)
		assert.NotNil(t, a[i].FileSizeBytes)
		assert.True(t, a[i].Approved)
		assert.False(t, a[i].CreatedAt.After(now))
		assert.True(t, a[i].CreatedAt.After(now.AddDate(-1, 0, -1)))
	}
}
