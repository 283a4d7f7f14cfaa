// Package dicom wraps parsing, anonymization, and metadata extraction for
// uploaded DICOM files. Parsed datasets are projected into a struct with an
// explicit optional field for every attribute the ingestion pipeline
// consumes; absence of an attribute is a normal, representable state.
package dicom

import (
	"io"
	"strconv"
	"strings"

	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Dataset is one parsed DICOM instance. String fields are empty when the
// attribute is absent; numeric fields are nil.
type Dataset struct {
	raw dcm.Dataset

	SOPInstanceUID    string
	SeriesInstanceUID string
	StudyInstanceUID  string

	SeriesNumber      *int
	InstanceNumber    *int
	SeriesDescription string
	Modality          string

	PatientName     string
	PatientID       string
	StudyDate       string
	SeriesDate      string
	Manufacturer    string
	InstitutionName string

	WindowCenter     *float64
	WindowWidth      *float64
	PixelSpacing     []float64
	ImageOrientation []float64
	ImagePosition    []float64
	SliceThickness   *float64
	Rows             *int
	Columns          *int
}

// Valid reports whether the dataset carries the two identifiers the
// pipeline requires. Everything else is optional.
func (d *Dataset) Valid() bool {
	return d.SOPInstanceUID != "" && d.SeriesInstanceUID != ""
}

// Write encodes the dataset.
func (d *Dataset) Write(w io.Writer) error {
	return dcm.Write(w, d.raw, dcm.SkipVRVerification())
}

func fromRaw(raw dcm.Dataset) *Dataset {
	return &Dataset{
		raw: raw,

		SOPInstanceUID:    firstString(raw, tag.SOPInstanceUID),
		SeriesInstanceUID: firstString(raw, tag.SeriesInstanceUID),
		StudyInstanceUID:  firstString(raw, tag.StudyInstanceUID),

		SeriesNumber:      firstInt(raw, tag.SeriesNumber),
		InstanceNumber:    firstInt(raw, tag.InstanceNumber),
		SeriesDescription: firstString(raw, tag.SeriesDescription),
		Modality:          firstString(raw, tag.Modality),

		PatientName:     firstString(raw, tag.PatientName),
		PatientID:       firstString(raw, tag.PatientID),
		StudyDate:       firstString(raw, tag.StudyDate),
		SeriesDate:      firstString(raw, tag.SeriesDate),
		Manufacturer:    firstString(raw, tag.Manufacturer),
		InstitutionName: firstString(raw, tag.InstitutionName),

		WindowCenter:     firstFloat(raw, tag.WindowCenter),
		WindowWidth:      firstFloat(raw, tag.WindowWidth),
		PixelSpacing:     allFloats(raw, tag.PixelSpacing),
		ImageOrientation: allFloats(raw, tag.ImageOrientationPatient),
		ImagePosition:    allFloats(raw, tag.ImagePositionPatient),
		SliceThickness:   firstFloat(raw, tag.SliceThickness),
		Rows:             firstInt(raw, tag.Rows),
		Columns:          firstInt(raw, tag.Columns),
	}
}

// Element value access below tolerates both native and string-encoded
// representations: integer-string (IS) and decimal-string (DS) attributes
// decode as []string, while US attributes like Rows decode as []int.

func firstString(ds dcm.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return ""
	}
	if vals, ok := el.Value.GetValue().([]string); ok && len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

func firstInt(ds dcm.Dataset, t tag.Tag) *int {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil
	}
	switch vals := el.Value.GetValue().(type) {
	case []int:
		if len(vals) > 0 {
			v := vals[0]
			return &v
		}
	case []string:
		if len(vals) > 0 {
			if v, err := strconv.Atoi(strings.TrimSpace(vals[0])); err == nil {
				return &v
			}
		}
	}
	return nil
}

func firstFloat(ds dcm.Dataset, t tag.Tag) *float64 {
	if vals := allFloats(ds, t); len(vals) > 0 {
		v := vals[0]
		return &v
	}
	return nil
}

func allFloats(ds dcm.Dataset, t tag.Tag) []float64 {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil
	}
	switch vals := el.Value.GetValue().(type) {
	case []float64:
		return vals
	case []string:
		out := make([]float64, 0, len(vals))
		for _, s := range vals {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil
			}
			out = append(out, f)
		}
		return out
	}
	return nil
}
