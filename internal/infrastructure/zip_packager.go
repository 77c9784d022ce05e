package infrastructure

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// ZipPackager builds in-memory ZIP archives
type ZipPackager struct{}

// NewZipPackager creates a new packager
func NewZipPackager() *ZipPackager {
	return &ZipPackager{}
}

// Pack stores each file under its base name, in input order
func (p *ZipPackager) Pack(paths []string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if seen[name] {
			zw.Close()
			return nil, fmt.Errorf("duplicate archive entry %q", name)
		}
		seen[name] = true

		if err := addZipEntry(zw, path, name); err != nil {
			zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf, nil
}

func addZipEntry(zw *zip.Writer, path, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
