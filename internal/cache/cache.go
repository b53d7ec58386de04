// Package cache looks up product image URLs recorded by the image pipeline.
//
// The cache is a flat JSON object mapping page identifiers to image URLs. It is
// read wholesale on each lookup and never written.
package cache

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrMalformed reports a cache file that is not a JSON object.
var ErrMalformed = errors.New("malformed image cache")

// MatchKind names the rule that selected a cache entry.
type MatchKind string

// Lookup rules, in the order they are tried.
const (
	MatchNone       MatchKind = ""
	MatchProductID  MatchKind = "product_id"
	MatchSubstring  MatchKind = "substring"
	MatchFirstEntry MatchKind = "first_entry"
)

var productIDPattern = regexp.MustCompile(`(?i)p(\d{6})`)

// Entry is one key/value pair, kept in file order.
type Entry struct {
	Key   string
	Value string
}

// Config controls where the cache is searched for and how misses are handled.
type Config struct {
	// Candidates are checked in order; the first existing regular file is used.
	Candidates []string
	// FirstEntryFallback returns the first entry when no rule matches.
	FirstEntryFallback bool
}

// Lookup implements imagefetch.CacheLookup against a cache file on fs.
type Lookup struct {
	fs     afero.Fs
	cfg    Config
	logger *zap.Logger
}

// New creates a Lookup.
func New(fs afero.Fs, cfg Config, logger *zap.Logger) *Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lookup{fs: fs, cfg: cfg, logger: logger.Named("cache")}
}

// Lookup returns the cached image URL for productURL, or "" when there is no
// cache file, it cannot be parsed, or no entry matches.
func (l *Lookup) Lookup(productURL string) string {
	path, ok := l.Find()
	if !ok {
		l.logger.Info("No image cache file found", zap.Strings("candidates", l.cfg.Candidates))
		return ""
	}
	entries, err := l.load(path)
	if err != nil {
		l.logger.Warn("Failed to load image cache", zap.String("path", path), zap.Error(err))
		return ""
	}
	value, kind := Match(entries, productURL, l.cfg.FirstEntryFallback)
	if kind == MatchNone {
		l.logger.Info("No matching cache entry", zap.String("path", path), zap.Int("entries", len(entries)))
		return ""
	}
	l.logger.Debug("Cache entry matched",
		zap.String("path", path),
		zap.String("rule", string(kind)),
		zap.String("image_url", value))
	return value
}

// Find returns the first candidate path that exists as a regular file.
func (l *Lookup) Find() (string, bool) {
	for _, p := range l.cfg.Candidates {
		if p == "" {
			continue
		}
		info, err := l.fs.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		return p, true
	}
	return "", false
}

func (l *Lookup) load(path string) ([]Entry, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON object into entries, preserving key order.
func Parse(data []byte) ([]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformed)
	}
	var entries []Entry
	root.ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, Entry{Key: key.String(), Value: value.String()})
		return true
	})
	return entries, nil
}

// Match picks the entry for productURL. Rules, first match wins:
//  1. a six-digit product id ("P455936") found in the URL is contained in the key;
//  2. URL and key contain one another, ignoring case;
//  3. when firstEntryFallback is set, the first entry.
func Match(entries []Entry, productURL string, firstEntryFallback bool) (string, MatchKind) {
	if m := productIDPattern.FindStringSubmatch(productURL); m != nil {
		id := m[1]
		for _, e := range entries {
			if strings.Contains(e.Key, id) {
				return e.Value, MatchProductID
			}
		}
	}

	lowerURL := strings.ToLower(productURL)
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		lowerKey := strings.ToLower(e.Key)
		if strings.Contains(lowerURL, lowerKey) || strings.Contains(lowerKey, lowerURL) {
			return e.Value, MatchSubstring
		}
	}

	if firstEntryFallback && len(entries) > 0 {
		return entries[0].Value, MatchFirstEntry
	}
	return "", MatchNone
}
