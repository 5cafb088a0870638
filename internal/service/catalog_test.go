package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/model"
	"github.com/templui/downloadzone/internal/repository"
)

// publish stores n entries named d0..dn-1 where dI has I downloads.
func (e *testEnv) publish(t *testing.T, n int) []*model.Download {
	t.Helper()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	out := make([]*model.Download, 0, n)
	for i := range n {
		sub, err := model.NewSubmission(fmt.Sprintf("s%d", i), input(fmt.Sprintf("d%d", i), "game"), base)
		require.NoError(t, err)
		d := model.DownloadFromSubmission(sub, fmt.Sprintf("d%d", i), base.Add(time.Duration(i)*time.Second))
		d.DownloadCount = int64(i)
		require.NoError(t, e.catalog.Create(ctx, d))
		out = append(out, d)
	}
	return out
}

func ids(items []*model.Download) []string {
	out := make([]string, 0, len(items))
	for _, d := range items {
		out = append(out, d.ID)
	}
	return out
}

func TestTopFillsSlotsAfterSponsored(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.publish(t, 8)

	e.updateSettings(t, model.SettingsUpdate{
		TopDownloadsCount: ptr(5),
		SponsoredDownloads: &[]model.SponsoredDownload{
			{Name: "Sponsor A", DownloadLink: "https://a.example"},
			{Name: "Sponsor B", DownloadLink: "https://b.example"},
		},
	})

	top, err := e.catalog.Top(ctx)
	require.NoError(t, err)
	assert.True(t, top.Enabled)
	assert.Len(t, top.Sponsored, 2)
	assert.NotEmpty(t, top.Sponsored[0].ID)
	assert.Equal(t, []string{"d7", "d6", "d5"}, ids(top.Items))
	assert.Equal(t, 5, top.TotalSlots)

	e.updateSettings(t, model.SettingsUpdate{TopDownloadsEnabled: ptr(false)})
	top, err = e.catalog.Top(ctx)
	require.NoError(t, err)
	assert.False(t, top.Enabled)
	assert.Empty(t, top.Items)
	assert.Empty(t, top.Sponsored)
}

func TestTrendingBackfillsWithoutDuplicates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()
	e.publish(t, 8)

	trending, err := e.catalog.Trending(ctx, now)
	require.NoError(t, err)
	assert.False(t, trending.Enabled)

	e.updateSettings(t, model.SettingsUpdate{TrendingDownloadsEnabled: ptr(true), TrendingDownloadsCount: ptr(5)})

	require.NoError(t, e.catalog.TrackActivity(ctx, "d1", now.Add(-time.Minute)))
	require.NoError(t, e.catalog.TrackActivity(ctx, "d1", now.Add(-time.Minute)))
	require.NoError(t, e.catalog.TrackActivity(ctx, "d7", now.Add(-time.Minute)))
	// outside the window
	require.NoError(t, e.catalog.TrackActivity(ctx, "d0", now.Add(-8*24*time.Hour)))

	trending, err = e.catalog.Trending(ctx, now)
	require.NoError(t, err)
	assert.True(t, trending.Enabled)
	assert.Equal(t, []string{"d1", "d7", "d6", "d5", "d4"}, ids(trending.Items))
}

func TestTrackActivityUnknownDownload(t *testing.T) {
	e := newTestEnv(t)

	err := e.catalog.TrackActivity(context.Background(), "missing", time.Now())
	require.ErrorIs(t, err, repository.ErrDownloadNotFound)
	assert.Equal(t, 0, e.count(t, "download_activity"))
}

func TestCatalogListAndStats(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.publish(t, 5)

	page, err := e.catalog.List(ctx, repository.DownloadFilter{}, repository.DownloadSortDownloadsDesc, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, []string{"d2", "d1"}, ids(page.Items))

	empty, err := e.catalog.List(ctx, repository.DownloadFilter{Type: "movie"}, "", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 1, empty.Pages)

	require.NoError(t, e.catalog.IncrementDownloadCount(ctx, "d0"))
	require.ErrorIs(t, e.catalog.IncrementDownloadCount(ctx, "missing"), repository.ErrDownloadNotFound)

	stats, err := e.catalog.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, map[string]int{"game": 5, "software": 0, "movie": 0, "tv_show": 0}, stats.ByType)
	assert.Equal(t, int64(0+1+2+3+4+1), stats.TotalDownloads)

	found, err := e.catalog.Search(ctx, "D3", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d3"}, ids(found))

	require.NoError(t, e.catalog.Delete(ctx, "d3"))
	require.ErrorIs(t, e.catalog.Delete(ctx, "d3"), repository.ErrDownloadNotFound)
}
