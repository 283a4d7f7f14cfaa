package dicom

import (
	"bytes"
	"testing"

	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// fixtureOverride mutates the default element list used by buildFixture.
type fixtureOverride func(map[tag.Tag]*dcm.Element)

// buildFixture encodes a minimal valid DICOM file in memory. Overrides can
// replace or remove (nil) default elements.
func buildFixture(t *testing.T, overrides ...fixtureOverride) []byte {
	t.Helper()

	defaults := map[tag.Tag]*dcm.Element{
		tag.TransferSyntaxUID: mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		tag.SOPClassUID:       mustNewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		tag.SOPInstanceUID:    mustNewElement(tag.SOPInstanceUID, []string{"1.2.3.4.100"}),
		tag.SeriesInstanceUID: mustNewElement(tag.SeriesInstanceUID, []string{"1.2.3.4.10"}),
		tag.StudyInstanceUID:  mustNewElement(tag.StudyInstanceUID, []string{"1.2.3.4.1"}),
		tag.SeriesNumber:      mustNewElement(tag.SeriesNumber, []string{"2"}),
		tag.InstanceNumber:    mustNewElement(tag.InstanceNumber, []string{"7"}),
		tag.Modality:          mustNewElement(tag.Modality, []string{"MR"}),
		tag.PatientName:       mustNewElement(tag.PatientName, []string{"Doe^Jane"}),
		tag.PatientID:         mustNewElement(tag.PatientID, []string{"PID123456"}),
		tag.StudyDate:         mustNewElement(tag.StudyDate, []string{"20240115"}),
		tag.SeriesDate:        mustNewElement(tag.SeriesDate, []string{"20240115"}),
		tag.Manufacturer:      mustNewElement(tag.Manufacturer, []string{"SIEMENS"}),
		tag.InstitutionName:   mustNewElement(tag.InstitutionName, []string{"General Hospital"}),
		tag.WindowCenter:      mustNewElement(tag.WindowCenter, []string{"600.0"}),
		tag.WindowWidth:       mustNewElement(tag.WindowWidth, []string{"1200.0"}),
		tag.PixelSpacing:      mustNewElement(tag.PixelSpacing, []string{"0.5", "0.5"}),
		tag.SliceThickness:    mustNewElement(tag.SliceThickness, []string{"2.0"}),
		tag.Rows:              mustNewElement(tag.Rows, []int{128}),
		tag.Columns:           mustNewElement(tag.Columns, []int{128}),
	}
	for _, o := range overrides {
		o(defaults)
	}

	var elements []*dcm.Element
	for _, el := range defaults {
		if el != nil {
			elements = append(elements, el)
		}
	}

	var buf bytes.Buffer
	if err := dcm.Write(&buf, dcm.Dataset{Elements: elements}, dcm.SkipVRVerification()); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return buf.Bytes()
}

func withElement(t tag.Tag, data interface{}) fixtureOverride {
	return func(m map[tag.Tag]*dcm.Element) {
		m[t] = mustNewElement(t, data)
	}
}

func withoutElement(t tag.Tag) fixtureOverride {
	return func(m map[tag.Tag]*dcm.Element) {
		m[t] = nil
	}
}

func parseFixture(t *testing.T, overrides ...fixtureOverride) *Dataset {
	t.Helper()
	ds, err := Parse(buildFixture(t, overrides...))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return ds
}
