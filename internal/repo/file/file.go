// Package file reads check logs from a directory of <key>_report.log files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hamed0406/uptimereport/internal/domain"
	"github.com/hamed0406/uptimereport/internal/repo"
)

type Source struct {
	Dir string
}

func New(dir string) *Source { return &Source{Dir: dir} }

// LogName is the file name used for a target's log.
func LogName(key domain.TargetKey) string { return string(key) + "_report.log" }

func (s *Source) Fetch(ctx context.Context, key domain.TargetKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, LogName(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", repo.ErrNoLog
	}
	if err != nil {
		return "", fmt.Errorf("read log %s: %w", key, err)
	}
	return string(b), nil
}
