package dicom

import (
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestExtractMetadata(t *testing.T) {
	m := ExtractMetadata(parseFixture(t))

	if m["patient_id"] != "PID123456" {
		t.Errorf("patient_id = %v", m["patient_id"])
	}
	if m["study_date"] != "20240115" || m["series_date"] != "20240115" {
		t.Errorf("dates = %v / %v", m["study_date"], m["series_date"])
	}
	if m["modality"] != "MR" || m["manufacturer"] != "SIEMENS" {
		t.Errorf("modality/manufacturer = %v / %v", m["modality"], m["manufacturer"])
	}
	if m["window_center"] != 600.0 || m["window_width"] != 1200.0 {
		t.Errorf("window = %v / %v", m["window_center"], m["window_width"])
	}
	dims, ok := m["dimensions"].(map[string]int)
	if !ok || dims["rows"] != 128 || dims["columns"] != 128 {
		t.Errorf("dimensions = %v", m["dimensions"])
	}
	spacing, ok := m["pixel_spacing"].([]float64)
	if !ok || len(spacing) != 2 {
		t.Errorf("pixel_spacing = %v", m["pixel_spacing"])
	}
}

func TestExtractMetadataOptionalKeysOmitted(t *testing.T) {
	m := ExtractMetadata(parseFixture(t,
		withoutElement(tag.WindowCenter),
		withoutElement(tag.WindowWidth),
		withoutElement(tag.PixelSpacing),
		withoutElement(tag.SliceThickness),
		withoutElement(tag.Rows),
	))

	for _, key := range []string{"window_center", "window_width", "pixel_spacing", "slice_thickness", "dimensions"} {
		if _, present := m[key]; present {
			t.Errorf("key %q present for dataset missing the attribute", key)
		}
	}
	// Identifying string keys are always present, empty or not.
	for _, key := range []string{"patient_id", "study_date", "series_date", "modality", "manufacturer", "institution_name"} {
		if _, present := m[key]; !present {
			t.Errorf("key %q missing", key)
		}
	}
}

func TestExtractMetadataEmptyStrings(t *testing.T) {
	m := ExtractMetadata(parseFixture(t,
		withoutElement(tag.Manufacturer),
		withoutElement(tag.StudyDate),
	))

	if m["manufacturer"] != "" || m["study_date"] != "" {
		t.Errorf("absent attributes should map to empty strings: %v / %v",
			m["manufacturer"], m["study_date"])
	}
}
