// Package corpus reads tabular corpus exports from disk and streams their
// rows to the analysis engines. Encoding recovery lives here: the core
// packages only ever see decoded strings.
package corpus

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Files returns all CSV files under root, sorted for reproducible runs.
func Files(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ScanFile streams one CSV file's rows. The header row is passed first
// via the header callback, then fn runs once per data row with 1-based
// row indexes. Files that are not valid UTF-8 are decoded as Latin-1
// before parsing, so garbled legacy exports still flow through. Ragged
// rows are tolerated; rows the parser cannot recover are skipped.
func ScanFile(path string, header func([]string), fn func(values []string, index int) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	if header != nil {
		header(head)
	}

	for index := 1; ; index++ {
		values, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return fmt.Errorf("read row %d of %s: %w", index, path, err)
		}
		if err := fn(values, index); err != nil {
			return err
		}
	}
}
