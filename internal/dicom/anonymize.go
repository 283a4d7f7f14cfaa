package dicom

import (
	dcm "github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Placeholder values written over direct patient identifiers. The two
// attributes are replaced rather than removed so viewers that expect them
// keep working.
const (
	AnonymousPatientName = "Anonymous"
	AnonymousPatientID   = "ID0000"
)

// removedTags are identifying attributes stripped outright during
// anonymization. Clinically useful context (modality, dates, descriptions,
// manufacturer, institution name) is kept.
var removedTags = []tag.Tag{
	tag.PatientBirthDate,
	tag.PatientBirthName,
	tag.PatientAddress,
	tag.PatientTelephoneNumbers,
	tag.PatientMotherBirthName,
	tag.OtherPatientIDs,
	tag.OtherPatientNames,
	tag.MilitaryRank,
	tag.BranchOfService,
	tag.MedicalRecordLocator,

	tag.ReferringPhysicianName,
	tag.PerformingPhysicianName,
	tag.OperatorsName,
	tag.PhysiciansOfRecord,
	tag.NameOfPhysiciansReadingStudy,

	tag.InstitutionAddress,
	tag.InstitutionalDepartmentName,
}

func isRemoved(t tag.Tag) bool {
	for _, r := range removedTags {
		if t == r {
			return true
		}
	}
	return false
}

// Anonymize returns a new dataset with patient name and ID replaced by
// placeholders and the removedTags attributes dropped. The input dataset is
// not modified. Attributes absent from the input stay absent; nothing is
// synthesized.
func Anonymize(d *Dataset) *Dataset {
	elements := make([]*dcm.Element, 0, len(d.raw.Elements))
	for _, el := range d.raw.Elements {
		switch {
		case el.Tag == tag.PatientName:
			elements = append(elements, mustNewElement(tag.PatientName, []string{AnonymousPatientName}))
		case el.Tag == tag.PatientID:
			elements = append(elements, mustNewElement(tag.PatientID, []string{AnonymousPatientID}))
		case isRemoved(el.Tag):
			// dropped
		default:
			elements = append(elements, el)
		}
	}
	return fromRaw(dcm.Dataset{Elements: elements})
}

func mustNewElement(t tag.Tag, data interface{}) *dcm.Element {
	e, err := dcm.NewElement(t, data)
	if err != nil {
		panic(err)
	}
	return e
}
