package dicom

// ExtractMetadata projects the attributes the UI displays into a flat map
// suitable for JSON storage. Identifying string fields are always present
// (empty when the attribute was absent); numeric display parameters are
// included only when present.
func ExtractMetadata(d *Dataset) map[string]any {
	m := map[string]any{
		"patient_id":       d.PatientID,
		"study_date":       d.StudyDate,
		"series_date":      d.SeriesDate,
		"modality":         d.Modality,
		"manufacturer":     d.Manufacturer,
		"institution_name": d.InstitutionName,
	}
	if d.WindowCenter != nil {
		m["window_center"] = *d.WindowCenter
	}
	if d.WindowWidth != nil {
		m["window_width"] = *d.WindowWidth
	}
	if len(d.PixelSpacing) > 0 {
		m["pixel_spacing"] = d.PixelSpacing
	}
	if d.SliceThickness != nil {
		m["slice_thickness"] = *d.SliceThickness
	}
	if len(d.ImageOrientation) > 0 {
		m["image_orientation"] = d.ImageOrientation
	}
	if len(d.ImagePosition) > 0 {
		m["image_position"] = d.ImagePosition
	}
	if d.Rows != nil && d.Columns != nil {
		m["dimensions"] = map[string]int{
			"rows":    *d.Rows,
			"columns": *d.Columns,
		}
	}
	return m
}
