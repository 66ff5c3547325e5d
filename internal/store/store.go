// Package store is the content-addressed, deduplicated, collision-free
// persistence layer (spec §4.2): raw/processed/analysis/reports/state/logs
// subdirectories under one base directory, filenames derived from an
// optional LLM-supplied semantic name or the URL's last path segment, and
// a content-hash suffix guaranteeing uniqueness across different bytes
// sharing a base name.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kestrelcrawl/intentcrawl/internal/urlkey"
	"github.com/kestrelcrawl/intentcrawl/pkg/fileutil"
	"github.com/kestrelcrawl/intentcrawl/pkg/hashutil"
)

// Category is one of the store's fixed subdirectories.
type Category string

const (
	CategoryRaw       Category = "raw"
	CategoryProcessed Category = "processed"
	CategoryAnalysis  Category = "analysis"
	CategoryReports   Category = "reports"
	CategoryState     Category = "state"
	CategoryLogs      Category = "logs"
)

var allCategories = []Category{
	CategoryRaw, CategoryProcessed, CategoryAnalysis, CategoryReports, CategoryState, CategoryLogs,
}

// ReportType is the rendering format of a saved report artifact.
type ReportType string

const (
	ReportMarkdown ReportType = "markdown"
	ReportHTML     ReportType = "html"
	ReportJSON     ReportType = "json"
)

// StoredFile is the record returned by every Save* call.
type StoredFile struct {
	Path        string    `json:"path"`
	Category    Category  `json:"category"`
	ContentHash string    `json:"content_hash"`
	Size        int64     `json:"size"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LLMNamer produces a semantic filename stem for a page's content, the
// highest-priority source in the filename-generation order (spec §4.2).
// Implementations may call out to the fast-tier LLM; a failure or empty
// result falls back to the URL's last path segment.
type LLMNamer interface {
	Name(ctx context.Context, url string, content []byte) (string, bool)
}

// Stats summarizes what has been written so far.
type Stats struct {
	TotalFiles        int
	TotalBytes        int64
	FilesByCategory    map[Category]int
	BytesByCategory    map[Category]int64
	DuplicatesSkipped int
}

// Store is the concrete, filesystem-backed C2 implementation. It is safe
// for concurrent use: the dedup hash table, the per-URL stem index, and the
// stats counters are the shared mutable state called out in spec §5,
// guarded by a single mutex.
type Store struct {
	baseDir string
	namer   LLMNamer

	mu sync.Mutex

	// contentHash -> path of the first raw artifact written with those
	// bytes. Backs invariant 4 (one file per byte payload).
	byContentHash map[string]string
	// urlKey -> filename stem, populated on the first Save* call for a URL
	// so processed/analysis artifacts share raw's base name.
	stemByURLKey map[string]string

	// rawIndex persists the raw category's url -> artifact alias map to
	// disk (spec §6's "raw/<stem>.html (+ alias map)"), so a resumed run
	// can find a prior URL's stored artifacts without rescanning raw/.
	rawIndex *Index

	stats Stats
}

// New creates (or reopens) a store rooted at baseDir, creating every
// category subdirectory. namer may be nil, in which case filenames always
// fall back to the URL's last path segment. If baseDir already holds a
// raw alias index from a prior run, its entries repopulate the in-memory
// dedup and stem tables.
func New(baseDir string, namer LLMNamer) (*Store, error) {
	for _, cat := range allCategories {
		if err := fileutil.EnsureDir(filepath.Join(baseDir, string(cat))); err != nil {
			return nil, fmt.Errorf("store: ensure category dir %s: %w", cat, err)
		}
	}

	rawIndex, err := OpenIndex(baseDir, CategoryRaw)
	if err != nil {
		return nil, err
	}

	s := &Store{
		baseDir:       baseDir,
		namer:         namer,
		byContentHash: make(map[string]string),
		stemByURLKey:  make(map[string]string),
		rawIndex:      rawIndex,
		stats: Stats{
			FilesByCategory: make(map[Category]int),
			BytesByCategory: make(map[Category]int64),
		},
	}

	for url, entry := range rawIndex.All() {
		if _, ok := s.byContentHash[entry.ContentHash]; !ok {
			s.byContentHash[entry.ContentHash] = entry.Path
		}
		s.stemByURLKey[urlkey.Key(url)] = stemFromPath(entry.Path)
	}

	return s, nil
}

// SaveRaw persists raw HTML bytes for url, writing to a temp file and
// renaming it into place. If identical bytes were already stored as a raw
// artifact (in this run or, via the alias index, a prior one), the write
// is skipped, DuplicatesSkipped is
// incremented, and the existing file's record is returned.
func (s *Store) SaveRaw(ctx context.Context, url string, html []byte) (StoredFile, error) {
	return s.saveBytes(ctx, CategoryRaw, url, html, ".html")
}

// SaveProcessed writes content (typically an ExtractedContent-shaped value)
// as UTF-8 JSON wrapped in a `_meta` envelope, sharing raw's filename stem.
func (s *Store) SaveProcessed(ctx context.Context, url string, content any) (StoredFile, error) {
	return s.saveJSON(ctx, CategoryProcessed, url, content)
}

// SaveAnalysis writes an analysis result the same way SaveProcessed does.
func (s *Store) SaveAnalysis(ctx context.Context, url string, content any) (StoredFile, error) {
	return s.saveJSON(ctx, CategoryAnalysis, url, content)
}

// SaveReport writes a named report artifact under reports/.
func (s *Store) SaveReport(name string, content []byte, kind ReportType) (StoredFile, error) {
	ext := reportExtension(kind)
	path := filepath.Join(s.baseDir, string(CategoryReports), name+ext)
	if err := fileutil.WriteFile(path, content); err != nil {
		return StoredFile{}, fmt.Errorf("store: save report: %w", err)
	}

	hash, _ := hashutil.HashBytes(content, hashutil.HashAlgoBLAKE3)
	sf := StoredFile{Path: path, Category: CategoryReports, ContentHash: hash, Size: int64(len(content)), CreatedAt: time.Now()}
	s.recordStats(CategoryReports, sf.Size)
	return sf, nil
}

// SaveState serialises v as JSON under state/<name>.json.
func (s *Store) SaveState(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal state %s: %w", name, err)
	}
	path := filepath.Join(s.baseDir, string(CategoryState), name+".json")
	if err := fileutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("store: save state %s: %w", name, err)
	}
	s.recordStats(CategoryState, int64(len(data)))
	return nil
}

// LoadState reads state/<name>.json into v.
func (s *Store) LoadState(name string, v any) error {
	path := filepath.Join(s.baseDir, string(CategoryState), name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("store: load state %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: unmarshal state %s: %w", name, err)
	}
	return nil
}

// StatePath returns the on-disk path a state/<name>.json artifact would
// occupy, for callers (e.g. the frontier checkpoint) that serialise
// themselves rather than going through SaveState/LoadState.
func (s *Store) StatePath(name string) string {
	return filepath.Join(s.baseDir, string(CategoryState), name+".json")
}

// Stats returns a snapshot of accumulated write statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCat := make(map[Category]int, len(s.stats.FilesByCategory))
	bytesCat := make(map[Category]int64, len(s.stats.BytesByCategory))
	for k, v := range s.stats.FilesByCategory {
		byCat[k] = v
	}
	for k, v := range s.stats.BytesByCategory {
		bytesCat[k] = v
	}

	return Stats{
		TotalFiles:        s.stats.TotalFiles,
		TotalBytes:        s.stats.TotalBytes,
		FilesByCategory:   byCat,
		BytesByCategory:   bytesCat,
		DuplicatesSkipped: s.stats.DuplicatesSkipped,
	}
}

func (s *Store) saveBytes(ctx context.Context, category Category, url string, content []byte, ext string) (StoredFile, error) {
	hash, err := hashutil.HashBytes(content, hashutil.HashAlgoBLAKE3)
	if err != nil {
		return StoredFile{}, fmt.Errorf("store: hash content: %w", err)
	}

	s.mu.Lock()
	if existingPath, ok := s.byContentHash[hash]; ok {
		s.stats.DuplicatesSkipped++
		key := urlkey.Key(url)
		if _, known := s.stemByURLKey[key]; !known {
			s.stemByURLKey[key] = stemFromPath(existingPath)
		}
		s.mu.Unlock()
		if s.rawIndex != nil {
			_ = s.rawIndex.Put(url, IndexEntry{URL: url, Path: existingPath, ContentHash: hash})
		}
		return StoredFile{Path: existingPath, Category: category, ContentHash: hash, Size: int64(len(content)), URL: url}, nil
	}
	s.mu.Unlock()

	stem := s.resolveStem(ctx, url, content, hash)

	path, err := s.uniquePath(category, stem+ext)
	if err != nil {
		return StoredFile{}, err
	}

	if err := writeFileAtomic(path, content); err != nil {
		return StoredFile{}, fmt.Errorf("store: write raw: %w", err)
	}

	s.mu.Lock()
	s.byContentHash[hash] = path
	s.mu.Unlock()

	if s.rawIndex != nil {
		if err := s.rawIndex.Put(url, IndexEntry{URL: url, Path: path, ContentHash: hash}); err != nil {
			return StoredFile{}, fmt.Errorf("store: persist raw index: %w", err)
		}
	}

	sf := StoredFile{Path: path, Category: category, ContentHash: hash, Size: int64(len(content)), URL: url, CreatedAt: time.Now()}
	s.recordStats(category, sf.Size)
	return sf, nil
}

func (s *Store) saveJSON(ctx context.Context, category Category, url string, content any) (StoredFile, error) {
	envelope := map[string]any{
		"_meta": map[string]any{
			"url":      url,
			"saved_at": time.Now().UTC().Format(time.RFC3339),
		},
	}
	merged, err := mergeJSON(envelope, content)
	if err != nil {
		return StoredFile{}, fmt.Errorf("store: merge envelope: %w", err)
	}

	stem := s.stemFor(ctx, url, merged)

	envelope["_meta"].(map[string]any)["filename"] = stem
	merged, err = mergeJSON(envelope, content)
	if err != nil {
		return StoredFile{}, fmt.Errorf("store: merge envelope: %w", err)
	}

	path, err := s.uniquePath(category, stem+".json")
	if err != nil {
		return StoredFile{}, err
	}

	if err := fileutil.WriteFile(path, merged); err != nil {
		return StoredFile{}, fmt.Errorf("store: write %s: %w", category, err)
	}

	hash, _ := hashutil.HashBytes(merged, hashutil.HashAlgoBLAKE3)
	sf := StoredFile{Path: path, Category: category, ContentHash: hash, Size: int64(len(merged)), URL: url, CreatedAt: time.Now()}
	s.recordStats(category, sf.Size)
	return sf, nil
}

// stemFor returns the filename stem a processed/analysis artifact for url
// should use: the stem already established for this URL by a prior
// SaveRaw, or a freshly computed one if none exists yet.
func (s *Store) stemFor(ctx context.Context, url string, content []byte) string {
	key := urlkey.Key(url)

	s.mu.Lock()
	if stem, ok := s.stemByURLKey[key]; ok {
		s.mu.Unlock()
		return stem
	}
	s.mu.Unlock()

	hash, _ := hashutil.HashBytes(content, hashutil.HashAlgoBLAKE3)
	return s.resolveStem(ctx, url, content, hash)
}

func (s *Store) resolveStem(ctx context.Context, url string, content []byte, hash string) string {
	key := urlkey.Key(url)

	s.mu.Lock()
	if stem, ok := s.stemByURLKey[key]; ok {
		s.mu.Unlock()
		return stem
	}
	s.mu.Unlock()

	base := ""
	if s.namer != nil {
		if name, ok := s.namer.Name(ctx, url, content); ok && strings.TrimSpace(name) != "" {
			base = name
		}
	}
	if base == "" {
		base = lastPathSegment(url)
	}

	suffix := hash
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	stem := sanitizeName(base) + "_" + suffix

	s.mu.Lock()
	s.stemByURLKey[key] = stem
	s.mu.Unlock()

	return stem
}

func (s *Store) uniquePath(category Category, filename string) (string, error) {
	dir := filepath.Join(s.baseDir, string(category))
	path := filepath.Join(dir, filename)

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("store: stat %s: %w", path, err)
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

func (s *Store) recordStats(category Category, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TotalFiles++
	s.stats.TotalBytes += size
	s.stats.FilesByCategory[category]++
	s.stats.BytesByCategory[category] += size
}

func reportExtension(kind ReportType) string {
	switch kind {
	case ReportHTML:
		return ".html"
	case ReportJSON:
		return ".json"
	default:
		return ".md"
	}
}

func stemFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func mergeJSON(envelope map[string]any, content any) ([]byte, error) {
	contentBytes, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(contentBytes, &fields); err != nil {
		// content wasn't an object (e.g. a slice); keep it under "data".
		fields = map[string]any{"data": json.RawMessage(contentBytes)}
	}
	for k, v := range envelope {
		fields[k] = v
	}

	return json.MarshalIndent(fields, "", "  ")
}
