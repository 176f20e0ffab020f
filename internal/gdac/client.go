// Package gdac retrieves ARGO files from a GDAC FTP mirror over
// anonymous login. Every operation dials its own connection and quits
// when done; there is no pooling or reuse across files.
package gdac

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

// IndexPath is the well-known location of the gzipped global profile
// index, relative to the mirror's base directory.
const IndexPath = "ar_index_global_prof.txt.gz"

const defaultTimeout = 30 * time.Second

// Client downloads files from one GDAC mirror.
type Client struct {
	Host    string // e.g. ftp.ifremer.fr
	BaseDir string // e.g. /ifremer/argo
	Timeout time.Duration
}

func (c *Client) connect(ctx context.Context) (*ftp.ServerConn, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	conn, err := ftp.Dial(net.JoinHostPort(c.Host, "21"),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.Host, err)
	}
	if err := conn.Login("anonymous", "anonymous"); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("anonymous login: %w", err)
	}
	return conn, nil
}

// FetchIndex retrieves the gzipped global profile index and returns the
// decompressed bytes. Any failure is returned to the caller; index
// retrieval is fatal to a pipeline run.
func (c *Client) FetchIndex(ctx context.Context) ([]byte, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	resp, err := conn.Retr(path.Join(c.BaseDir, IndexPath))
	if err != nil {
		return nil, fmt.Errorf("retrieve index: %w", err)
	}
	compressed, err := io.ReadAll(resp)
	resp.Close()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("decompress index: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompress index: %w", err)
	}
	return data, nil
}

// Download streams one profile file to destPath. relPath is the file
// column of a catalog entry, relative to the mirror's base directory.
func (c *Client) Download(ctx context.Context, relPath, destPath string) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit()

	dir, name := path.Split(path.Join(c.BaseDir, relPath))
	if err := conn.ChangeDir(dir); err != nil {
		return fmt.Errorf("cwd %s: %w", dir, err)
	}

	resp, err := conn.Retr(name)
	if err != nil {
		return fmt.Errorf("retrieve %s: %w", name, err)
	}
	defer resp.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp); err != nil {
		f.Close()
		os.Remove(destPath)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return f.Close()
}
