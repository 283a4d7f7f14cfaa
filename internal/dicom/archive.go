package dicom

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidArchive indicates the uploaded bytes are not a readable zip
// archive. Handlers map it to a client error.
var ErrInvalidArchive = errors.New("invalid or unreadable archive")

// maxEntrySize caps a single decompressed archive entry. Teaching studies
// are far below this; the cap blocks decompression bombs.
const maxEntrySize = 1 << 30

// ArchiveFile is one candidate DICOM file extracted from an upload.
type ArchiveFile struct {
	Name string
	Data []byte
}

// IsCandidateFile reports whether an archive entry name looks like a DICOM
// file. Extensions vary wildly across exporters, so the heuristic accepts
// the common ones plus extensionless names and lets the parser decide.
func IsCandidateFile(name string) bool {
	base := filepath.Base(name)
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".dcm", ".dicom", ".dic", "":
		return true
	}
	return false
}

// UnpackArchive extracts candidate DICOM files from a zip upload. Entries
// are staged through a scratch directory that is removed before return on
// every path. Files come back in archive order.
func UnpackArchive(data []byte) ([]ArchiveFile, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	scratch, err := os.MkdirTemp("", "dicom-unpack-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	var files []ArchiveFile
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !IsCandidateFile(entry.Name) {
			continue
		}

		dest := filepath.Join(scratch, filepath.Base(entry.Name))
		if err := extractEntry(entry, dest); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrInvalidArchive, entry.Name, err)
		}

		content, err := os.ReadFile(dest)
		if err != nil {
			return nil, fmt.Errorf("read extracted entry %q: %w", entry.Name, err)
		}
		files = append(files, ArchiveFile{Name: entry.Name, Data: content})
	}
	return files, nil
}

func extractEntry(entry *zip.File, dest string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(rc, maxEntrySize)); err != nil {
		return err
	}
	return nil
}
