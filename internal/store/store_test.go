package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelcrawl/intentcrawl/internal/store"
	"github.com/stretchr/testify/require"
)

type stubNamer struct {
	name string
	ok   bool
}

func (s stubNamer) Name(_ context.Context, _ string, _ []byte) (string, bool) {
	return s.name, s.ok
}

func TestSaveRawCreatesFileUnderRawCategory(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	sf, err := s.SaveRaw(context.Background(), "https://example.com/about", []byte("<html>hi</html>"))
	require.NoError(t, err)
	require.Equal(t, store.CategoryRaw, sf.Category)
	require.FileExists(t, sf.Path)
	require.Contains(t, sf.Path, filepath.Join(dir, "raw"))
}

func TestSaveRawDeduplicatesIdenticalBytes(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	first, err := s.SaveRaw(context.Background(), "https://example.com/a", []byte("same content"))
	require.NoError(t, err)
	second, err := s.SaveRaw(context.Background(), "https://example.com/b", []byte("same content"))
	require.NoError(t, err)

	require.Equal(t, first.Path, second.Path)
	require.Equal(t, 1, s.Stats().DuplicatesSkipped)
}

func TestSaveRawUsesLLMNamerWhenAvailable(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, stubNamer{name: "Admissions Requirements", ok: true})
	require.NoError(t, err)

	sf, err := s.SaveRaw(context.Background(), "https://example.com/p/123", []byte("content"))
	require.NoError(t, err)
	require.Contains(t, filepath.Base(sf.Path), "admissions_requirements")
}

func TestSaveRawFallsBackToURLSegmentWithoutNamer(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	sf, err := s.SaveRaw(context.Background(), "https://example.com/admissions/requirements", []byte("content"))
	require.NoError(t, err)
	require.Contains(t, filepath.Base(sf.Path), "requirements")
}

func TestSaveRawAvoidsCollisionsForDifferentBytesSameStem(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	a, err := s.SaveRaw(context.Background(), "https://example.com/page?x=1", []byte("content a"))
	require.NoError(t, err)
	b, err := s.SaveRaw(context.Background(), "https://example.com/page?x=2", []byte("content b"))
	require.NoError(t, err)

	require.NotEqual(t, a.Path, b.Path)
}

func TestSaveProcessedWritesJSONEnvelope(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	type content struct {
		Title string `json:"title"`
	}

	sf, err := s.SaveProcessed(context.Background(), "https://example.com/x", content{Title: "hello"})
	require.NoError(t, err)

	data, err := os.ReadFile(sf.Path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "hello", decoded["title"])
	require.Contains(t, decoded, "_meta")
}

func TestSaveStateRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	type frontierState struct {
		Count int `json:"count"`
	}

	require.NoError(t, s.SaveState("frontier", frontierState{Count: 7}))

	var loaded frontierState
	require.NoError(t, s.LoadState("frontier", &loaded))
	require.Equal(t, 7, loaded.Count)
}

func TestSaveReportUsesExtensionForType(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	sf, err := s.SaveReport("crawl_report_20260101", []byte("# Report"), store.ReportMarkdown)
	require.NoError(t, err)
	require.Equal(t, ".md", filepath.Ext(sf.Path))
}

func TestStatsAccumulateAcrossCategories(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	_, err = s.SaveRaw(context.Background(), "https://example.com/a", []byte("abc"))
	require.NoError(t, err)
	_, err = s.SaveProcessed(context.Background(), "https://example.com/a", map[string]string{"k": "v"})
	require.NoError(t, err)

	stats := s.Stats()
	require.Equal(t, 2, stats.TotalFiles)
	require.Equal(t, 1, stats.FilesByCategory[store.CategoryRaw])
	require.Equal(t, 1, stats.FilesByCategory[store.CategoryProcessed])
}

func TestIndexPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	idx, err := store.OpenIndex(dir, store.CategoryRaw)
	require.NoError(t, err)

	require.NoError(t, idx.Put("https://example.com/a", store.IndexEntry{URL: "https://example.com/a", Path: "raw/a.html", ContentHash: "deadbeef"}))

	reopened, err := store.OpenIndex(dir, store.CategoryRaw)
	require.NoError(t, err)

	entry, ok := reopened.Lookup("https://example.com/a")
	require.True(t, ok)
	require.Equal(t, "deadbeef", entry.ContentHash)
}

func TestReopenedStoreDedupsAgainstPriorRunsAliasMap(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir, nil)
	require.NoError(t, err)

	first, err := s.SaveRaw(context.Background(), "https://example.com/a", []byte("same content"))
	require.NoError(t, err)

	reopened, err := store.New(dir, nil)
	require.NoError(t, err)

	second, err := reopened.SaveRaw(context.Background(), "https://example.com/b", []byte("same content"))
	require.NoError(t, err)

	require.Equal(t, first.Path, second.Path)
	require.Equal(t, 1, reopened.Stats().DuplicatesSkipped)
}
