// Package dicomfs maps DICOM identifiers onto the on-disk storage layout.
//
// Anonymized files live under a configured root in a deterministic tree:
//
//	<root>/case_<case_id>/<series_instance_uid>/<sop_instance_uid>.dcm
//
// Series instance UIDs are globally unique, so no two series collide on
// disk, and SOP instance UIDs are unique within a series.
package dicomfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileExt is the extension given to stored anonymized files.
const FileExt = ".dcm"

// maxUIDLength is the DICOM limit on UI value representation length.
const maxUIDLength = 64

// ValidUID reports whether s is a well-formed DICOM UID: non-empty, at
// most 64 characters, digits and dots only. UIDs come from uploaded
// files, so anything else must never reach a filesystem join.
func ValidUID(s string) bool {
	if s == "" || len(s) > maxUIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '.' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Layout resolves storage paths below a fixed root directory.
type Layout struct {
	root string
}

// NewLayout returns a Layout rooted at dir.
func NewLayout(dir string) *Layout {
	return &Layout{root: dir}
}

// Root returns the storage root, creating it if absent.
func (l *Layout) Root() (string, error) {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return "", fmt.Errorf("create dicom root %s: %w", l.root, err)
	}
	return l.root, nil
}

// CasePath returns the subtree for one case, creating it if absent.
func (l *Layout) CasePath(caseID uuid.UUID) (string, error) {
	root, err := l.Root()
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, fmt.Sprintf("case_%s", caseID))
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", fmt.Errorf("create case directory %s: %w", p, err)
	}
	return p, nil
}

// SeriesPath returns the directory for one series within a case, creating
// it if absent.
func (l *Layout) SeriesPath(caseID uuid.UUID, seriesInstanceUID string) (string, error) {
	if !ValidUID(seriesInstanceUID) {
		return "", fmt.Errorf("invalid series instance uid %q", seriesInstanceUID)
	}
	casePath, err := l.CasePath(caseID)
	if err != nil {
		return "", err
	}
	p := filepath.Join(casePath, seriesInstanceUID)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", fmt.Errorf("create series directory %s: %w", p, err)
	}
	return p, nil
}

// ImagePath returns the file path for one image instance, creating parent
// directories as needed.
func (l *Layout) ImagePath(caseID uuid.UUID, seriesInstanceUID, sopInstanceUID string) (string, error) {
	if !ValidUID(sopInstanceUID) {
		return "", fmt.Errorf("invalid sop instance uid %q", sopInstanceUID)
	}
	seriesPath, err := l.SeriesPath(caseID, seriesInstanceUID)
	if err != nil {
		return "", err
	}
	return filepath.Join(seriesPath, sopInstanceUID+FileExt), nil
}

// RemoveCase deletes a case's entire storage subtree. Removing a subtree
// that does not exist is not an error.
func (l *Layout) RemoveCase(caseID uuid.UUID) error {
	p := filepath.Join(l.root, fmt.Sprintf("case_%s", caseID))
	if err := os.RemoveAll(p); err != nil {
		return fmt.Errorf("remove case directory %s: %w", p, err)
	}
	return nil
}
