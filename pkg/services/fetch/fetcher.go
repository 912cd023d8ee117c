package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// progressEvery bounds how often a running download logs its position.
const progressEvery = 1 << 20 // 1 MiB

// FetchError reports a failed download. The cache file the download was
// meant to refresh is left untouched when this is returned.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options configure a Fetcher. A zero MaxAge means every call re-downloads.
type Options struct {
	MaxAge time.Duration
	Client *retryablehttp.Client
}

// Fetcher downloads remote datasets into local cache files, skipping the
// network entirely while the cached copy is still fresh.
type Fetcher struct {
	maxAge time.Duration
	client *retryablehttp.Client
}

func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = nil
	}
	return &Fetcher{
		maxAge: opts.MaxAge,
		client: client,
	}
}

// EnsureCached returns the path of a local copy of url under localDir,
// downloading only if the file is missing or older than the configured
// max age. A file aged exactly max age still counts as fresh.
//
// Downloads land in a temp file first and replace the cache with a rename,
// so a failed fetch never clobbers a previously valid copy.
func (f *Fetcher) EnsureCached(ctx context.Context, url, localDir, localFile string) (string, error) {
	logger := zerolog.Ctx(ctx)
	localPath := filepath.Join(localDir, localFile)

	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir %s: %w", localDir, err)
	}

	if info, err := os.Stat(localPath); err == nil {
		age := time.Since(info.ModTime())
		if age <= f.maxAge {
			logger.Debug().
				Str("file", localFile).
				Dur("age", age).
				Msg("cache is fresh, skipping download")
			return localPath, nil
		}
		logger.Info().
			Str("file", localFile).
			Dur("age", age).
			Msg("cache is stale, refreshing")
	} else {
		logger.Info().Str("file", localFile).Msg("cache missing, downloading")
	}

	if err := f.download(ctx, url, localPath, localFile); err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return localPath, nil
}

func (f *Fetcher) download(ctx context.Context, url, localPath, localFile string) error {
	logger := zerolog.Ctx(ctx)

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), localFile+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	total := "unknown"
	if resp.ContentLength >= 0 {
		total = humanize.IBytes(uint64(resp.ContentLength))
	}

	var written, lastLogged int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := tmp.Write(buf[:n]); err != nil {
				return err
			}
			written += int64(n)
			if written-lastLogged >= progressEvery {
				lastLogged = written
				logger.Debug().
					Str("file", localFile).
					Str("written", humanize.IBytes(uint64(written))).
					Str("total", total).
					Msg("downloading")
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return err
	}

	logger.Info().
		Str("file", localFile).
		Str("size", humanize.IBytes(uint64(written))).
		Msg("download complete")
	return nil
}
