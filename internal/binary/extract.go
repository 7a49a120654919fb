package binary

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxBinaryBytes caps the extracted executable (500 MB).
const maxBinaryBytes = 500 << 20

// Extractor handles archive extraction
type Extractor struct {
	maxBytes int64
}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{maxBytes: maxBinaryBytes}
}

// ExtractBinary writes the single regular file whose base name equals
// binaryName from a .tar.gz archive to destPath. Both flat archives
// ("context") and nested layouts ("context_1.4.0_linux_amd64/context") are
// handled. Every failure wraps ErrExtractionFailed.
func (e *Extractor) ExtractBinary(archivePath, destPath, binaryName string) error {
	if err := e.extractBinary(archivePath, destPath, binaryName); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return nil
}

func (e *Extractor) extractBinary(archivePath, destPath, binaryName string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("binary %s not found in archive", binaryName)
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg || filepath.Base(header.Name) != binaryName {
			continue
		}
		if header.Size > e.maxBytes {
			return fmt.Errorf("binary %s is %d bytes, limit is %d", binaryName, header.Size, e.maxBytes)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return fmt.Errorf("create dest dir: %w", err)
		}

		outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}

		if _, err := io.Copy(outFile, io.LimitReader(tarReader, e.maxBytes)); err != nil {
			outFile.Close()
			os.Remove(destPath)
			return fmt.Errorf("write file: %w", err)
		}
		if err := outFile.Close(); err != nil {
			os.Remove(destPath)
			return fmt.Errorf("close file: %w", err)
		}

		return nil
	}
}
