// Package registry reads the key=url target list.
package registry

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/uptimereport/internal/domain"
)

// Parse reads one key=url pair per line, in file order. Lines missing either
// side are skipped, as are blank lines and # comments. The url keeps any
// further '=' characters.
func Parse(r io.Reader) ([]domain.Target, error) {
	var (
		out  []domain.Target
		errs error
		seen = make(map[domain.TargetKey]int)
	)

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, url, _ := strings.Cut(line, "=")
		key, url = strings.TrimSpace(key), strings.TrimSpace(url)
		if key == "" || url == "" {
			continue
		}
		if strings.ContainsAny(key, `/\`) {
			errs = multierr.Append(errs, fmt.Errorf("line %d: key %q must not contain path separators", n, key))
			continue
		}
		k := domain.TargetKey(key)
		if first, dup := seen[k]; dup {
			errs = multierr.Append(errs, fmt.Errorf("line %d: duplicate key %q (first on line %d)", n, key, first))
			continue
		}
		seen[k] = n
		out = append(out, domain.Target{Key: k, URL: url})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func Load(path string) ([]domain.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Find returns the target registered under key.
func Find(targets []domain.Target, key domain.TargetKey) (domain.Target, bool) {
	for _, t := range targets {
		if t.Key == key {
			return t, true
		}
	}
	return domain.Target{}, false
}

// Lister yields the current target list.
type Lister interface {
	List(ctx context.Context) ([]domain.Target, error)
}

// Static is a fixed target list.
type Static []domain.Target

func (s Static) List(ctx context.Context) ([]domain.Target, error) { return s, nil }

// File re-reads its path on every List, so edits apply without a restart.
type File struct {
	Path string
}

func (f File) List(ctx context.Context) ([]domain.Target, error) { return Load(f.Path) }
