package dicom

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %q: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestUnpackArchiveFiltersCandidates(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"study/img001.dcm":     []byte("one"),
		"study/img002.DICOM":   []byte("two"),
		"study/IM0003":         []byte("three"),
		"study/readme.txt":     []byte("not dicom"),
		"study/report.pdf":     []byte("not dicom"),
		"__MACOSX/._img001":    []byte("resource fork"),
		"study/.DS_Store":      []byte("junk"),
	})

	files, err := UnpackArchive(data)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}
	seen := map[string]string{}
	for _, f := range files {
		seen[f.Name] = string(f.Data)
	}
	if seen["study/img001.dcm"] != "one" || seen["study/img002.DICOM"] != "two" || seen["study/IM0003"] != "three" {
		t.Errorf("unexpected extraction result: %v", seen)
	}
}

func TestUnpackArchiveInvalidBytes(t *testing.T) {
	_, err := UnpackArchive([]byte("this is not a zip"))
	if !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("err = %v, want ErrInvalidArchive", err)
	}
}

func TestUnpackArchiveEmpty(t *testing.T) {
	files, err := UnpackArchive(buildZip(t, map[string][]byte{"notes.txt": []byte("x")}))
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestIsCandidateFile(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"img.dcm", true},
		{"IMG.DCM", true},
		{"scan.dicom", true},
		{"scan.dic", true},
		{"IM0001", true},
		{"nested/dir/IM0002", true},
		{"report.pdf", false},
		{"notes.txt", false},
		{".DS_Store", false},
		{"__MACOSX/._img", false},
	}
	for _, tc := range cases {
		if got := IsCandidateFile(tc.name); got != tc.want {
			t.Errorf("IsCandidateFile(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
