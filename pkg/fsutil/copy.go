// Package fsutil provides the recursive merge-copy primitive every
// installation action is built on.
package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rminstall/rminstall/pkg/errors"
)

// CopyDir copies the src directory tree into dest, creating dest and
// any missing intermediate directories and overwriting files that
// already exist. Files present only at the destination are left
// untouched, so the operation merges rather than replaces.
//
// It fails with ErrSourceNotDirectory if src is not a directory and
// ErrDestinationIsFile if dest exists and is a regular file.
func CopyDir(src, dest string) error {
	srcInfo, err := os.Stat(src)
	if err != nil || !srcInfo.IsDir() {
		return errors.New(errors.ErrSourceNotDirectory, "source is not a directory").
			WithDetail("path", src)
	}

	if destInfo, err := os.Stat(dest); err == nil && !destInfo.IsDir() {
		return errors.New(errors.ErrDestinationIsFile, "destination is a file").
			WithDetail("path", dest)
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot create destination directory").
			WithDetail("path", dest)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot read source directory").
			WithDetail("path", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, destPath); err != nil {
				return err
			}
			continue
		}

		if err := CopyFile(srcPath, destPath); err != nil {
			return err
		}
	}

	return nil
}

// CopyFile copies a single file, overwriting the destination and
// preserving the source's mode
func CopyFile(src, dest string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot open source file").
			WithDetail("path", src)
	}
	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot stat source file").
			WithDetail("path", src)
	}

	destFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot create destination file").
			WithDetail("path", dest)
	}

	if _, err := io.Copy(destFile, srcFile); err != nil {
		_ = destFile.Close()
		return errors.Wrap(err, errors.ErrIOFailure, "cannot copy file").
			WithDetail("path", dest)
	}

	if err := destFile.Close(); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "cannot finish writing file").
			WithDetail("path", dest)
	}

	return nil
}
