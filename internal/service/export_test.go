package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/downloadzone/internal/model"
)

func TestExportWritesSnapshot(t *testing.T) {
	e := newTestEnv(t)
	e.publish(t, 3)
	store := &fakeStorage{}
	svc := NewExportService(e.downloadRepository, store, time.Hour)
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	res, err := svc.Export(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "exports/downloads-20250304T050607Z.json", res.Key)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, "https://storage.example/"+res.Key+"?signed", res.URL)

	var items []model.Download
	require.NoError(t, json.Unmarshal(store.objects[res.Key], &items))
	require.Len(t, items, 3)
	assert.Equal(t, "d0", items[0].ID)
}

func TestExportEmptyCatalog(t *testing.T) {
	e := newTestEnv(t)
	store := &fakeStorage{}

	res, err := NewExportService(e.downloadRepository, store, 0).Export(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.URL)
	assert.JSONEq(t, `[]`, string(store.objects[res.Key]))
}

func TestExportWithoutStorage(t *testing.T) {
	e := newTestEnv(t)

	_, err := NewExportService(e.downloadRepository, nil, time.Hour).Export(context.Background(), time.Now())
	require.ErrorIs(t, err, ErrStorageNotConfigured)
}
