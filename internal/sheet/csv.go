package sheet

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// CSVSet is a Source made of one <sheet>.csv file per sheet, either in a
// directory or in a zip archive.
type CSVSet struct {
	fsys   fs.FS
	closer io.Closer
}

// OpenCSVDir reads sheets from the CSV files of dir.
func OpenCSVDir(dir string) (*CSVSet, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &CSVSet{fsys: os.DirFS(dir)}, nil
}

// OpenCSVZip reads sheets from the CSV files stored at the root of a zip archive.
func OpenCSVZip(path string) (*CSVSet, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv archive %s: %w", path, err)
	}
	return &CSVSet{fsys: r, closer: r}, nil
}

// ReadCSVZip reads sheets from a zip archive held in r, such as an upload.
func ReadCSVZip(r io.ReaderAt, size int64) (*CSVSet, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv archive: %w", err)
	}
	return &CSVSet{fsys: zr}, nil
}

func (c *CSVSet) Sheet(name string) (*Sheet, error) {
	f, err := c.fsys.Open(name + ".csv")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s.csv: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s.csv: %w", name, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return FromStrings(name, records), nil
}

func (c *CSVSet) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
