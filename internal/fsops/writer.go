package fsops

import (
	"io"
	"os"
	"path/filepath"

	"guardfs/internal/fserr"
	"guardfs/internal/policy"
)

// Writer performs policy-checked write operations.
type Writer struct {
	policy     policy.Policy
	createDirs bool
}

// NewWriter returns a Writer enforcing the given policy. When createDirs is
// set, missing parent directories are created before a file write.
func NewWriter(p policy.Policy, createDirs bool) *Writer {
	return &Writer{policy: p, createDirs: createDirs}
}

// writeFile is the shared write protocol: validate the path, check the
// content size, then open once with the final flags and confirm through the
// handle that a regular file was opened before any byte is written. Data is
// synced to disk before success is reported.
func (w *Writer) writeFile(path string, content []byte, flag int) error {
	validated, err := w.policy.ValidateWrite(path)
	if err != nil {
		return err
	}
	if err := w.policy.ValidateSize(int64(len(content))); err != nil {
		return err
	}

	if w.createDirs {
		if err := os.MkdirAll(filepath.Dir(validated), 0o755); err != nil {
			return fserr.IO(err)
		}
	}

	f, err := os.OpenFile(validated, os.O_WRONLY|os.O_CREATE|flag, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return fserr.NotFound("parent directory does not exist: " + validated)
		}
		return mapOpenError(err, validated)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fserr.IO(err)
	}
	if !info.Mode().IsRegular() {
		return fserr.InvalidPath("cannot write to non-regular file")
	}

	if _, err := f.Write(content); err != nil {
		return fserr.IO(err)
	}
	if err := f.Sync(); err != nil {
		return fserr.IO(err)
	}
	return nil
}

// WriteString writes content to a file, replacing anything already there.
func (w *Writer) WriteString(path, content string) error {
	return w.writeFile(path, []byte(content), os.O_TRUNC)
}

// WriteBytes writes content to a file, replacing anything already there.
func (w *Writer) WriteBytes(path string, content []byte) error {
	return w.writeFile(path, content, os.O_TRUNC)
}

// AppendString appends content to a file, creating it if missing. The size
// cap applies to the appended content, not the resulting file.
func (w *Writer) AppendString(path, content string) error {
	return w.writeFile(path, []byte(content), os.O_APPEND)
}

// Delete removes a regular file.
func (w *Writer) Delete(path string) error {
	validated, err := w.policy.ValidateWrite(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(validated)
	if err != nil {
		if os.IsNotExist(err) {
			return fserr.NotFound(validated)
		}
		return mapOpenError(err, validated)
	}
	if !info.Mode().IsRegular() {
		return fserr.InvalidPath("path is not a regular file")
	}

	if err := os.Remove(validated); err != nil {
		return mapOpenError(err, validated)
	}
	return nil
}

// Move renames a file. Both endpoints must pass write validation; the
// rename itself is all or nothing.
func (w *Writer) Move(from, to string) error {
	validatedFrom, err := w.policy.ValidateWrite(from)
	if err != nil {
		return err
	}
	validatedTo, err := w.policy.ValidateWrite(to)
	if err != nil {
		return err
	}

	if _, err := os.Stat(validatedFrom); err != nil {
		if os.IsNotExist(err) {
			return fserr.NotFound(validatedFrom)
		}
		return mapOpenError(err, validatedFrom)
	}

	if err := os.Rename(validatedFrom, validatedTo); err != nil {
		return mapOpenError(err, validatedFrom)
	}
	return nil
}

// Copy copies a file and returns the number of bytes copied. The source
// goes through the full read protocol, size cap included, and the
// destination through write validation, so a copy can never smuggle an
// unreadable file into a writable location.
func (w *Writer) Copy(from, to string) (int64, error) {
	src, _, err := openValidated(&w.policy, from)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	validatedTo, err := w.policy.ValidateWrite(to)
	if err != nil {
		return 0, err
	}

	dst, err := os.OpenFile(validatedTo, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, mapOpenError(err, validatedTo)
	}
	defer dst.Close()

	info, err := dst.Stat()
	if err != nil {
		return 0, fserr.IO(err)
	}
	if !info.Mode().IsRegular() {
		return 0, fserr.InvalidPath("cannot write to non-regular file")
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		return 0, fserr.IO(err)
	}
	if err := dst.Sync(); err != nil {
		return 0, fserr.IO(err)
	}
	return n, nil
}

// CreateDirectory creates a directory. With recursive set, missing parents
// are created as well. An existing target is an error.
func (w *Writer) CreateDirectory(path string, recursive bool) error {
	validated, err := w.policy.ValidateWrite(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(validated); err == nil {
		return fserr.InvalidPath("directory already exists")
	}

	if recursive {
		err = os.MkdirAll(validated, 0o755)
	} else {
		err = os.Mkdir(validated, 0o755)
	}
	if err != nil {
		return mapOpenError(err, validated)
	}
	return nil
}

// RemoveDirectory removes a directory. Without recursive the directory
// must be empty.
func (w *Writer) RemoveDirectory(path string, recursive bool) error {
	validated, err := w.policy.ValidateWrite(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(validated)
	if err != nil || !info.IsDir() {
		return fserr.InvalidPath("path is not a directory or does not exist")
	}

	if recursive {
		err = os.RemoveAll(validated)
	} else {
		err = os.Remove(validated)
	}
	if err != nil {
		return mapOpenError(err, validated)
	}
	return nil
}
