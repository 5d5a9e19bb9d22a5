package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/sheet"
	"github.com/beesaferoot/imobipro/models"
)

// record is one source row after column renaming: destination key to the
// trimmed literal cell value. Empty and formula cells are absent.
type record struct {
	row    int
	fields map[string]string
}

// columnMap renames source headers to destination keys. Keys are folded
// header names, so matching ignores case and accents.
type columnMap map[string]string

func columns(pairs ...string) columnMap {
	m := make(columnMap, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[models.Fold(pairs[i])] = pairs[i+1]
	}
	return m
}

// readRecords zips the header with each data row. It returns the non-empty
// rows and the number of formula cells that were dropped.
func readRecords(s *sheet.Sheet, cols columnMap) ([]record, int) {
	header := s.Header()
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = cols[models.Fold(h)]
	}

	var (
		records []record
		dropped int
	)
	for i := 1; i < len(s.Rows); i++ {
		rec := record{row: i + 1, fields: map[string]string{}}
		for j, cell := range s.Rows[i] {
			if j >= len(keys) || keys[j] == "" {
				continue
			}
			if cell.IsFormula() {
				dropped++
				continue
			}
			if v := strings.TrimSpace(cell.Value); v != "" {
				rec.fields[keys[j]] = v
			}
		}
		if len(rec.fields) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}

func (r record) has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

func (r record) text(key string) string {
	return r.fields[key]
}

func (r record) optText(key string) *string {
	v, ok := r.fields[key]
	if !ok {
		return nil
	}
	return &v
}

// textOr returns the value of key, or fallback when absent. An empty
// fallback yields nil.
func (r record) textOr(key, fallback string) *string {
	if v, ok := r.fields[key]; ok {
		return &v
	}
	if fallback == "" {
		return nil
	}
	return &fallback
}

// date is a tolerant field: unparsable dates become absent.
func (r record) date(key string) *string {
	if d, ok := ParseDate(r.fields[key]); ok {
		return &d
	}
	return nil
}

func (r record) month(key string) *string {
	if d, ok := ParseMonth(r.fields[key]); ok {
		return &d
	}
	return nil
}

// id reads a numeric identifier, reporting false when absent or unparsable.
func (r record) id(key string) (int, bool) {
	return ParseInt(r.fields[key])
}

// amount rejects present but unparsable money values.
func (r record) amount(key string) (decimal.NullDecimal, error) {
	v, ok := r.fields[key]
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	d, ok := ParseDecimal(v)
	if !ok {
		return decimal.NullDecimal{}, batch.Invalid(key, "invalid amount %q", v)
	}
	return decimal.NewNullDecimal(d), nil
}

// amounts reads several money fields, stopping at the first invalid one.
func (r record) amounts(keys ...string) ([]decimal.NullDecimal, error) {
	out := make([]decimal.NullDecimal, len(keys))
	for i, k := range keys {
		v, err := r.amount(k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// enum parses an optional enumerated field, returning fallback when absent.
func enum[T ~string](r record, key string, parse func(string) (T, error), fallback T) (T, error) {
	v, ok := r.fields[key]
	if !ok {
		return fallback, nil
	}
	parsed, err := parse(v)
	if err != nil {
		return fallback, batch.Invalid(key, "%v", err)
	}
	return parsed, nil
}
