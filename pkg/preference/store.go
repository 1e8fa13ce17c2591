package preference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrStoreUnavailable wraps any failure saving the preference table. Per
// the error-handling contract, a Load failure never returns this — it
// falls back to an empty record set instead — but a Save failure always
// does.
var ErrStoreUnavailable = errors.New("preference store unavailable")

// Store loads and saves the whole preference table atomically. Load
// failures are swallowed into an empty result (callers still get a valid,
// if sparse, schedule); Save failures are surfaced via ErrStoreUnavailable.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

const csvDateLayout = "2006-01-02"

var csvHeader = []string{"Data", "Lekarz", "Status", "Przyczyna"}

// FileStore persists the preference table as a single CSV file, matching
// the external interface's canonical representation (spec §6). Save
// writes to a temporary file in the same directory and renames it into
// place, so a crash mid-write never leaves a partially-written file
// observable to a concurrent Load.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by the CSV file at path. The
// file need not exist yet; the first Load will report an empty table and
// the first Save will create it.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		// Per §4.2/§7: a load failure yields an empty record set, not an error.
		return nil, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil || len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	reasonCol, hasReason := col["Przyczyna"]
	var records []Record
	for _, row := range rows[1:] {
		date, err := time.Parse(csvDateLayout, strings.TrimSpace(row[col["Data"]]))
		if err != nil {
			continue
		}
		rec := Record{
			Date:   date,
			Doctor: row[col["Lekarz"]],
			Status: Status(row[col["Status"]]),
		}
		if hasReason && reasonCol < len(row) {
			rec.Reason = Reason(row[reasonCol])
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FileStore) Save(ctx context.Context, records []Record) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".preferences-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing header: %v", ErrStoreUnavailable, err)
	}
	for _, rec := range records {
		row := []string{
			rec.Date.Format(csvDateLayout),
			rec.Doctor,
			string(rec.Status),
			string(rec.Reason),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("%w: writing row: %v", ErrStoreUnavailable, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: flushing: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: renaming into place: %v", ErrStoreUnavailable, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
