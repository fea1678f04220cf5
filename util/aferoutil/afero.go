package aferoutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/eluv-io/errors-go"
	"github.com/spf13/afero"
)

// PendingExt is the extension of files that are being written by WriteFile.
const PendingExt = ".pending"

// WriteFile creates the file at path with the data produced by the given
// write function. The data is first written to a pending file next to path,
// which then replaces path. If write fails, the pending file is removed and
// path is left untouched. Missing parent directories are created.
func WriteFile(fs afero.Fs, path string, write func(w io.Writer) error) (err error) {
	e := errors.Template("WriteFile", errors.K.IO, "path", path)
	if path == "" {
		return e(errors.K.Invalid, "reason", "empty path")
	}

	err = fs.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		return e(err, "reason", "failed to create directory")
	}

	pending := path + PendingExt
	f, err := fs.Create(pending)
	if err != nil {
		return e(err, "reason", "failed to create pending file")
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(pending)
		}
	}()

	err = write(f)
	closeErr := f.Close()
	if err != nil {
		return errors.E("WriteFile", err, "path", path)
	}
	if closeErr != nil {
		return e(closeErr, "reason", "failed to close pending file")
	}

	err = MoveFile(fs, pending, path)
	if err != nil {
		return errors.E("WriteFile", err, "path", path)
	}
	return nil
}

// MoveFile moves the file at src to dst, replacing dst if it exists. The file
// is renamed if the file system allows it and copied otherwise.
func MoveFile(fs afero.Fs, src, dst string) error {
	e := errors.Template("MoveFile", errors.K.IO, "src", src, "dst", dst)
	if src == "" || dst == "" {
		return e(errors.K.Invalid, "reason", "empty path")
	}

	stat, err := fs.Stat(src)
	if err != nil {
		return e(err, "reason", "cannot stat source")
	}
	if stat.IsDir() {
		return e(errors.K.Invalid, "reason", "source is a directory")
	}
	if stat, err = fs.Stat(dst); err == nil && stat.IsDir() {
		return e(errors.K.Invalid, "reason", "destination is a directory")
	}

	if err = fs.Rename(src, dst); err == nil {
		return nil
	}

	in, err := fs.Open(src)
	if err != nil {
		return e(err, "reason", "failed to open source file")
	}
	defer errors.Ignore(in.Close)

	out, err := fs.Create(dst)
	if err != nil {
		return e(err, "reason", "failed to create destination file")
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return e(err, "reason", "failed to copy file data")
	}

	err = fs.Remove(src)
	if err != nil {
		return e(err, "reason", "failed to remove source file")
	}
	return nil
}
