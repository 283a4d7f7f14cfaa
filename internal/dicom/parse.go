package dicom

import (
	"bytes"
	"fmt"

	dcm "github.com/suyashkumar/dicom"
)

const preambleLength = 128

var dicmMagic = []byte("DICM")

// Parse attempts to decode one candidate file. Files written without the
// standard 128-byte preamble and DICM magic are retried with a synthetic
// preamble prepended, since real exports frequently omit it. A file that
// is not DICOM at all returns an error, which the ingestion pipeline
// records as a skip rather than a failure.
func Parse(data []byte) (*Dataset, error) {
	raw, err := dcm.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err == nil {
		return fromRaw(raw), nil
	}

	if !hasPreamble(data) {
		padded := make([]byte, 0, preambleLength+len(dicmMagic)+len(data))
		padded = append(padded, make([]byte, preambleLength)...)
		padded = append(padded, dicmMagic...)
		padded = append(padded, data...)
		if raw, retryErr := dcm.Parse(bytes.NewReader(padded), int64(len(padded)), nil); retryErr == nil {
			return fromRaw(raw), nil
		}
	}

	return nil, fmt.Errorf("parse dicom: %w", err)
}

func hasPreamble(data []byte) bool {
	return len(data) >= preambleLength+len(dicmMagic) &&
		bytes.Equal(data[preambleLength:preambleLength+len(dicmMagic)], dicmMagic)
}
