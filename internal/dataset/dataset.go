// Package dataset reads product page links from the scraped catalogue CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Defaults for the catalogue export.
const (
	DefaultPath       = "Sephora_all_423.csv"
	DefaultLinkColumn = "cosmetic_link"
)

// ErrColumnNotFound reports a header row without the link column.
var ErrColumnNotFound = errors.New("link column not found")

// Loader returns the first usable product link from a CSV file.
type Loader struct {
	fs     afero.Fs
	path   string
	column string
	logger *zap.Logger
}

// NewLoader creates a Loader for path, reading links from column.
func NewLoader(fs afero.Fs, path, column string, logger *zap.Logger) *Loader {
	if column == "" {
		column = DefaultLinkColumn
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fs: fs, path: path, column: column, logger: logger.Named("dataset")}
}

// FirstLink returns the first non-empty link starting with "http". Missing files,
// missing columns, and parse errors are logged and reported as no link.
func (l *Loader) FirstLink() (string, bool) {
	link, err := l.firstLink()
	if err != nil {
		l.logger.Debug("No product link from dataset", zap.String("path", l.path), zap.Error(err))
		return "", false
	}
	return link, link != ""
}

func (l *Loader) firstLink() (string, error) {
	if l.path == "" {
		return "", nil
	}
	f, err := l.fs.Open(l.path)
	if err != nil {
		return "", fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return "", fmt.Errorf("read header: %w", err)
	}
	idx := columnIndex(header, l.column)
	if idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrColumnNotFound, l.column)
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("read record: %w", err)
		}
		if idx >= len(record) {
			continue
		}
		link := strings.TrimSpace(record[idx])
		if link != "" && strings.HasPrefix(link, "http") {
			return link, nil
		}
	}
}

func columnIndex(header []string, column string) int {
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if strings.TrimSpace(name) == column {
			return i
		}
	}
	return -1
}
