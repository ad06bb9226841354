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
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/sirupsen/logrus"
)

// gzipBlockSize is the block size for parallel decompression.
const gzipBlockSize = 256 * 1024

// maybeDecompress returns path unchanged unless it has a .gz
// extension, in which case the file is decompressed into a temporary
// directory and the path of the decompressed file is returned.
func maybeDecompress(path string, log logrus.FieldLogger) (string, error) {
	if filepath.Ext(path) != ".gz" {
		return path, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("clearsky: opening compressed file: %v", err)
	}
	defer f.Close()
	gz, err := pgzip.NewReaderN(f, gzipBlockSize, runtime.NumCPU())
	if err != nil {
		return "", fmt.Errorf("clearsky: decompressing %s: %v", path, err)
	}
	defer gz.Close()

	dir, err := ioutil.TempDir("", "clearsky")
	if err != nil {
		return "", fmt.Errorf("clearsky: creating temporary directory: %v", err)
	}
	local := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), ".gz"))
	if err := writeFile(local, gz); err != nil {
		return "", fmt.Errorf("clearsky: decompressing %s: %v", path, err)
	}
	log.WithFields(logrus.Fields{
		"compressed": path,
		"local":      local,
	}).Debug("clearsky: decompressed file")
	return local, nil
}
