package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/catalogcrawl/internal/model"
)

// File writes each result as a JSON document in a per-run directory.
type File struct {
	// dir is the root output directory.
	dir string
}

// NewFile returns a File store rooted at dir. Directories are created on
// first save.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Dir returns the root output directory.
func (f *File) Dir() string {
	return f.dir
}

// pathSanitizer keeps dimension values from escaping the run directory.
var pathSanitizer = strings.NewReplacer("/", "_", `\`, "_")

// FileName returns the file name used for combo, e.g. "COMPSCI__UGRD.json".
func FileName(combo model.Combination) string {
	return pathSanitizer.Replace(combo.Major.String()) + "__" + pathSanitizer.Replace(combo.Career.String()) + ".json"
}

// Path returns the file a result for combo in run runID is written to.
func (f *File) Path(runID string, combo model.Combination) string {
	return filepath.Join(f.dir, runID, FileName(combo))
}

// Save implements Saver. The document is written to a temporary file and
// renamed into place so readers never see a partial file.
func (f *File) Save(ctx context.Context, runID string, combo model.Combination, result model.CrawlResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	runDir := filepath.Join(f.dir, runID)
	if err := os.MkdirAll(runDir, 0750); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	tmp, err := os.CreateTemp(runDir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := os.Rename(tmpName, f.Path(runID, combo)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move result into place: %w", err)
	}
	return nil
}

// Delete implements Deleter. An empty run directory is removed as well.
func (f *File) Delete(_ context.Context, runID string, combo model.Combination) error {
	if err := os.Remove(f.Path(runID, combo)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove result: %w", err)
	}
	runDir := filepath.Join(f.dir, runID)
	if entries, err := os.ReadDir(runDir); err == nil && len(entries) == 0 {
		_ = os.Remove(runDir)
	}
	return nil
}

// LoadResult reads a previously saved result. It returns ErrNotFound when
// no file exists.
func (f *File) LoadResult(_ context.Context, runID string, combo model.Combination) (model.CrawlResult, error) {
	data, err := os.ReadFile(f.Path(runID, combo))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read result: %w", err)
	}

	return decodeResult(data)
}

// ListRuns returns every run directory, newest first. Run directories are
// named by their start time in Unix milliseconds; other names sort after
// them. Files that cannot be decoded are skipped.
func (f *File) ListRuns(ctx context.Context) ([]RunInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]RunInfo, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() {
			continue
		}
		info, err := f.runInfo(e.Name())
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}

	slices.SortFunc(runs, func(a, b RunInfo) int {
		ai, aerr := strconv.ParseInt(a.RunID, 10, 64)
		bi, berr := strconv.ParseInt(b.RunID, 10, 64)
		switch {
		case aerr == nil && berr == nil:
			return cmp.Compare(bi, ai)
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		default:
			return strings.Compare(b.RunID, a.RunID)
		}
	})
	return runs, nil
}

// Combinations returns the combinations stored for a run, in file name
// order. Values are read back from file names, so a path separator in a
// dimension value comes back as '_'.
func (f *File) Combinations(_ context.Context, runID string) ([]model.Combination, error) {
	files, err := filepath.Glob(filepath.Join(f.dir, runID, "*__*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	combos := make([]model.Combination, 0, len(files))
	for _, name := range files {
		base := strings.TrimSuffix(filepath.Base(name), ".json")
		i := strings.LastIndex(base, "__")
		combos = append(combos, model.Combination{
			Major:  model.DimensionValue(base[:i]),
			Career: model.DimensionValue(base[i+2:]),
		})
	}
	return combos, nil
}

func (f *File) runInfo(runID string) (RunInfo, error) {
	info := RunInfo{RunID: runID}
	files, err := filepath.Glob(filepath.Join(f.dir, runID, "*__*.json"))
	if err != nil {
		return info, fmt.Errorf("failed to list results: %w", err)
	}
	for _, name := range files {
		data, err := os.ReadFile(name) //nolint:gosec // path comes from the output directory
		if err != nil {
			continue
		}
		result, err := decodeResult(data)
		if err != nil {
			continue
		}
		info.Combinations++
		info.Courses += len(result)
		info.Sections += result.SectionCount()
	}
	return info, nil
}
