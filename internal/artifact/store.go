package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

// Store reads and writes artifacts under a single data root directory.
// Tabular artifacts are CSV with a header row; model artifacts are opaque
// blobs. All failures wrap domain.PersistenceError.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir. The directory tree is created
// lazily on first write.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// AbsPath resolves a reference to its absolute path.
func (s *Store) AbsPath(ref Ref) string {
	return filepath.Join(s.root, filepath.FromSlash(ref.Path))
}

// Exists reports whether the artifact is present on disk.
func (s *Store) Exists(ref Ref) bool {
	info, err := os.Stat(s.AbsPath(ref))
	return err == nil && !info.IsDir()
}

// ReadDataset loads a tabular artifact. Cell types are inferred per value:
// empty cell → null, then int, float, RFC 3339 timestamp, else string.
func (s *Store) ReadDataset(ref Ref) (*domain.Dataset, error) {
	f, err := os.Open(s.AbsPath(ref))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read artifact", Path: ref.Path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read artifact", Path: ref.Path, Err: err}
	}
	if len(records) == 0 {
		return nil, &domain.PersistenceError{Op: "read artifact", Path: ref.Path,
			Err: fmt.Errorf("missing header row")}
	}

	ds := domain.NewDataset(records[0]...)
	for _, rec := range records[1:] {
		row := make(domain.Row, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(rec) {
				row[col] = inferValue(rec[i])
			}
		}
		ds.AppendRow(row)
	}
	return ds, nil
}

// WriteDataset persists a tabular artifact, creating parent directories.
func (s *Store) WriteDataset(ref Ref, ds *domain.Dataset) error {
	abs := s.AbsPath(ref)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &domain.PersistenceError{Op: "write artifact", Path: ref.Path, Err: err}
	}

	f, err := os.Create(abs)
	if err != nil {
		return &domain.PersistenceError{Op: "write artifact", Path: ref.Path, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Columns); err != nil {
		return &domain.PersistenceError{Op: "write artifact", Path: ref.Path, Err: err}
	}
	rec := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			rec[i] = formatValue(row[col])
		}
		if err := w.Write(rec); err != nil {
			return &domain.PersistenceError{Op: "write artifact", Path: ref.Path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &domain.PersistenceError{Op: "write artifact", Path: ref.Path, Err: err}
	}
	return nil
}

// WriteBlob persists an opaque binary artifact (a serialized model).
func (s *Store) WriteBlob(ref Ref, data []byte) error {
	abs := s.AbsPath(ref)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &domain.PersistenceError{Op: "write blob", Path: ref.Path, Err: err}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return &domain.PersistenceError{Op: "write blob", Path: ref.Path, Err: err}
	}
	return nil
}

// ReadBlob loads an opaque binary artifact.
func (s *Store) ReadBlob(ref Ref) ([]byte, error) {
	data, err := os.ReadFile(s.AbsPath(ref))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read blob", Path: ref.Path, Err: err}
	}
	return data, nil
}

// WriteSidecar persists the JSON metadata record next to an artifact,
// replacing the extension with .json.
func (s *Store) WriteSidecar(ref Ref, data []byte) error {
	rel := SidecarPath(ref)
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return &domain.PersistenceError{Op: "write metadata", Path: rel, Err: err}
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return &domain.PersistenceError{Op: "write metadata", Path: rel, Err: err}
	}
	return nil
}

// ReadSidecar loads the JSON metadata record associated with an artifact.
func (s *Store) ReadSidecar(ref Ref) ([]byte, error) {
	rel := SidecarPath(ref)
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read metadata", Path: rel, Err: err}
	}
	return data, nil
}

// SidecarPath returns the metadata sidecar path for an artifact reference.
func SidecarPath(ref Ref) string {
	ext := filepath.Ext(ref.Path)
	return strings.TrimSuffix(ref.Path, ext) + ".json"
}

// formatValue renders a cell for CSV. Nulls are empty cells; timestamps are
// RFC 3339 UTC.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// inferValue parses a CSV cell back into a typed value. Order matters:
// int before float so whole numbers round-trip as int64 (the validator
// widens int to float where a float column is declared).
func inferValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return s
}
