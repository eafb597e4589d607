/*
Copyright © 2026 the Porygon authors.
This file is part of Porygon.

Porygon is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Porygon is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Porygon.  If not, see <http://www.gnu.org/licenses/>.
*/

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// ExpandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func ExpandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}

// splitBlob splits a blob path into its bucket name and key. A file
// blob with an absolute path, such as file:///srv/maps/a.html, is
// keyed from the filesystem root.
func splitBlob(path string) (bucketName, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("cloud: parsing blob path '%s': %v", path, err)
	}
	if u.Scheme == "file" && u.Host == "" {
		return "file:///", strings.TrimPrefix(u.Path, "/"), nil
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// ReadBlob reads the given blob from the given bucket.
func ReadBlob(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {
	var b bytes.Buffer
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %w", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %w", key, err)
	}
	return b.Bytes(), nil
}

// WriteBlob writes the given data to the given bucket.
func WriteBlob(ctx context.Context, bucket *blob.Bucket, key string, data []byte) error {
	b := bytes.NewBuffer(data)
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err = io.Copy(w, b); err != nil {
		w.Close()
		return fmt.Errorf("cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}

// Download copies the blob at path, along with its shapefile sidecar
// files if it is a shapefile, into dir and returns the local path of
// the main file. Missing .prj files are skipped.
func Download(ctx context.Context, path, dir string) (string, error) {
	bucketName, _, err := splitBlob(path)
	if err != nil {
		return "", err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return "", err
	}
	defer bucket.Close()
	files := ExpandShp(path)
	for _, f := range files {
		_, key, err := splitBlob(f)
		if err != nil {
			return "", err
		}
		b, err := ReadBlob(ctx, bucket, key)
		if gcerrors.Code(err) == gcerrors.NotFound && filepath.Ext(key) == ".prj" {
			continue
		} else if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(key)), b, 0644); err != nil {
			return "", fmt.Errorf("cloud: saving download of %s: %v", f, err)
		}
	}
	return filepath.Join(dir, filepath.Base(files[0])), nil
}

// Uploader defers writing output files to blob storage. Outputs are
// first written to a temporary local directory returned by Local and
// copied to their blob destinations by Upload.
type Uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// Local checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// Upload is run.
func (u *Uploader) Local(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = os.MkdirTemp("", "porygon")
		if u.err != nil {
			return ""
		}
	}
	files := ExpandShp(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{
			filepath.Join(u.dir, filepath.Base(f)),
			f,
		})
	}
	return filepath.Join(u.dir, filepath.Base(files[0]))
}

// Upload copies every file registered with Local to blob storage and
// removes the temporary directory. Registered files that were never
// written locally are skipped.
func (u *Uploader) Upload(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	if u.dir != "" {
		defer os.RemoveAll(u.dir)
	}
	for _, files := range u.files {
		b, err := os.ReadFile(files[0])
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return fmt.Errorf("cloud: opening file '%s' for upload: %v", files[0], err)
		}
		bucketName, key, err := splitBlob(files[1])
		if err != nil {
			return err
		}
		bucket, err := OpenBucket(ctx, bucketName)
		if err != nil {
			return fmt.Errorf("cloud: opening bucket to upload file '%s': %v", files[1], err)
		}
		err = WriteBlob(ctx, bucket, key, b)
		bucket.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
