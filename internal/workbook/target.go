package workbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/sift/internal/common"
	"github.com/gofrs/flock"
)

// TimestampLayout formats the suffix of timestamped file names.
const TimestampLayout = "20060102_150405"

// Resolver picks the file an output is written to.
type Resolver struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// NewResolver returns a resolver using the wall clock and the default logger.
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now, Logger: slog.Default()}
}

// ResolveTarget is NewResolver().Resolve.
func ResolveTarget(path string) string {
	return NewResolver().Resolve(path)
}

// Resolve returns path when it can be (re)written, or an alternate
// <base>_new_<timestamp><ext> name when an existing file is held by another
// process or cannot be removed.
func (r *Resolver) Resolve(path string) string {
	if err := release(path); err != nil {
		alt := r.Alternate(path)
		r.logger().Warn("output file unavailable, writing to alternate name",
			"path", path, "alternate", alt, "error", err)
		return alt
	}
	return path
}

// Alternate returns the fallback name for path.
func (r *Resolver) Alternate(path string) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_new_%s%s", strings.TrimSuffix(path, ext), r.now().Format(TimestampLayout), ext)
}

// release clears an existing output file. It fails when the file is locked
// or cannot be removed.
func release(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrOutputLocked, err)
	}
	if !locked {
		return common.ErrOutputLocked
	}
	_ = lock.Unlock()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: %v", common.ErrOutputLocked, err)
	}
	return nil
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Derive names an output after its input: <dir>/<base><suffix>.xlsx.
func Derive(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix + ".xlsx"
}

// Timestamped returns <base>_<timestamp>.xlsx.
func Timestamped(base string, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", base, now.Format(TimestampLayout))
}

// Sibling places name in the directory of input.
func Sibling(input, name string) string {
	return filepath.Join(filepath.Dir(input), name)
}
