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
	"os"
	"path/filepath"

	"github.com/google/go-cloud/blob"
	"github.com/sirupsen/logrus"
)

// uploader stages output files that are destined for blob storage
// in a local temporary directory.
type uploader struct {
	staged []stagedFile
	dir    string
	err    error
}

type stagedFile struct {
	local, remote string
}

// maybeUpload returns path unchanged if it is not a blob storage
// location. Otherwise it returns a local path to write to instead,
// and the file is uploaded to path when upload is called.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		if u.dir, u.err = ioutil.TempDir("", "clearsky"); u.err != nil {
			return ""
		}
	}
	local := filepath.Join(u.dir, filepath.Base(path))
	u.staged = append(u.staged, stagedFile{local: local, remote: path})
	return local
}

// uploadOutput uploads the files registered with maybeUpload.
func (u *uploader) uploadOutput(ctx context.Context, log logrus.FieldLogger) error {
	if u.err != nil {
		return fmt.Errorf("clearsky: staging output for upload: %v", u.err)
	}
	for _, f := range u.staged {
		bucket, key, err := openBlob(ctx, f.remote)
		if err != nil {
			return err
		}
		err = retry(ctx, func() error {
			return uploadFile(ctx, bucket, f.local, key)
		}, "upload of "+f.remote, log)
		if err != nil {
			return fmt.Errorf("clearsky: uploading %s to %s: %v", f.local, f.remote, err)
		}
		log.WithField("blob", f.remote).Info("clearsky: uploaded file")
	}
	return nil
}

func uploadFile(ctx context.Context, bucket *blob.Bucket, local, key string) error {
	r, err := os.Open(local)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
