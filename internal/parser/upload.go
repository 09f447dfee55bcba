package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"edu-rag/internal/helper"
	"edu-rag/internal/models"
)

// SaveUpload writes an uploaded file into dir under its base name,
// replacing any earlier upload with the same name.
func SaveUpload(dir, name string, r io.Reader) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	if !IsSupported(base) {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, filepath.Ext(base))
	}
	if err := helper.CreateFolder(dir); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, base)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

// SaveUploadFile copies a local file into the upload directory. A file that
// already lives there is returned as is.
func SaveUploadFile(dir, srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", models.ErrFileNotFound, srcPath)
		}
		return "", err
	}
	defer src.Close()

	absSrc, err := filepath.Abs(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", srcPath, err)
	}
	absDst, err := filepath.Abs(filepath.Join(dir, filepath.Base(srcPath)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve upload path: %w", err)
	}
	if absSrc == absDst {
		return srcPath, nil
	}
	return SaveUpload(dir, srcPath, src)
}
