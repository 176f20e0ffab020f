// Package fetcher mirrors selected profile files into a local download
// directory.
package fetcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/oceanobs/floatchat/internal/argo"
)

// Downloader fetches one remote file to a local destination.
type Downloader interface {
	Download(ctx context.Context, relPath, destPath string) error
}

// Fetch ensures every selected entry has a local copy under dir and
// returns the accumulated list of local paths. A file that already
// exists is trusted as retrieved and never re-downloaded; a failed
// download is logged and the entry skipped, never fatal to the run.
func Fetch(ctx context.Context, dl Downloader, entries []argo.CatalogEntry, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		name := path.Base(e.File)
		dest := filepath.Join(dir, name)

		if _, err := os.Stat(dest); err == nil {
			log.Printf("already exists: %s", name)
			paths = append(paths, dest)
			continue
		}

		log.Printf("downloading: %s", name)
		if err := dl.Download(ctx, e.File, dest); err != nil {
			log.Printf("download failed for %s: %v", e.File, err)
			continue
		}
		paths = append(paths, dest)
	}
	return paths, nil
}
