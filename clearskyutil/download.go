/*
Copyright © 2018 the clearsky authors.
This file is part of clearsky.

clearsky is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

clearsky is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with clearsky.  If not, see <http://www.gnu.org/licenses/>.
*/

package clearskyutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// newBackOff returns the retry policy for downloads and uploads.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 5 * time.Minute
	return backoff.WithMaxRetries(b, 8)
}

// retry runs op until it succeeds, it returns a permanent error,
// or the retry policy is exhausted.
func retry(ctx context.Context, op backoff.Operation, what string, log logrus.FieldLogger) error {
	return backoff.RetryNotify(op, backoff.WithContext(newBackOff(), ctx),
		func(err error, d time.Duration) {
			log.WithError(err).Warnf("clearsky: %s failed; retrying in %v", what, d)
		})
}

// fetcher opens a remote file for reading.
type fetcher func(ctx context.Context, remote string) (io.ReadCloser, error)

// maybeDownload returns path unchanged if it is a local file.
// Otherwise, if it is an http(s) URL or a blob storage location,
// it downloads the file to a temporary directory and returns the
// local path. The .dbf, .shx and .prj files accompanying a
// shapefile are downloaded along with it. Files with a .gz
// extension are decompressed after they are retrieved.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	local, err := retrieve(ctx, path, log)
	if err != nil {
		return "", err
	}
	return maybeDecompress(local, log)
}

func retrieve(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return download(ctx, expandShp(path), fetchHTTP, log)
	case IsBlob(path):
		bucket, key, err := openBlob(ctx, path)
		if err != nil {
			return "", err
		}
		prefix := strings.TrimSuffix(path, key)
		fetch := func(ctx context.Context, remote string) (io.ReadCloser, error) {
			return bucket.NewReader(ctx, strings.TrimPrefix(remote, prefix))
		}
		return download(ctx, expandShp(path), fetch, log)
	}
	return path, nil
}

// download retrieves each of the remote files into a new temporary
// directory and returns the local path of the first one.
func download(ctx context.Context, remotes []string, fetch fetcher, log logrus.FieldLogger) (string, error) {
	dir, err := ioutil.TempDir("", "clearsky")
	if err != nil {
		return "", fmt.Errorf("clearsky: creating temporary download directory: %v", err)
	}
	for _, remote := range remotes {
		local := filepath.Join(dir, filepath.Base(remote))
		err := retry(ctx, func() error {
			r, err := fetch(ctx, remote)
			if err != nil {
				return err
			}
			defer r.Close()
			return writeFile(local, r)
		}, "download of "+remote, log)
		if err != nil {
			return "", fmt.Errorf("clearsky: downloading %s: %v", remote, err)
		}
		log.WithFields(logrus.Fields{
			"remote": remote,
			"local":  local,
		}).Info("clearsky: downloaded file")
	}
	return filepath.Join(dir, filepath.Base(remotes[0])), nil
}

// fetchHTTP requests url. Client errors are not retried.
func fetchHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err = fmt.Errorf("%s", resp.Status)
		if resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return resp.Body, nil
}

// writeFile copies r to a new file at path.
func writeFile(path string, r io.Reader) error {
	w, err := os.Create(path)
	if err != nil {
		return backoff.Permanent(err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// expandShp returns filename along with its .dbf, .shx and .prj
// files if it is a shapefile.
func expandShp(filename string) []string {
	if filepath.Ext(filename) != ".shp" {
		return []string{filename}
	}
	base := strings.TrimSuffix(filename, ".shp")
	return []string{filename, base + ".dbf", base + ".shx", base + ".prj"}
}
