// Package dicomhdr reads the acquisition modality from a DICOM header. Pixel data is skipped.
package dicomhdr

import (
	"fmt"
	"io"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/radassist-mcp-server/internal/domain"
)

// ModalityFromFile reads tag (0008,0060) from the DICOM file at path.
func ModalityFromFile(path string) (domain.Modality, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return domain.ModalityUnknown, fmt.Errorf("failed to parse DICOM header %s: %w", path, err)
	}
	return modalityFromDataset(ds)
}

// ModalityFromReader reads tag (0008,0060) from size bytes of DICOM data.
func ModalityFromReader(r io.Reader, size int64) (domain.Modality, error) {
	ds, err := dicom.Parse(r, size, nil, dicom.SkipPixelData())
	if err != nil {
		return domain.ModalityUnknown, fmt.Errorf("failed to parse DICOM header: %w", err)
	}
	return modalityFromDataset(ds)
}

func modalityFromDataset(ds dicom.Dataset) (domain.Modality, error) {
	elem, err := ds.FindElementByTag(tag.Modality)
	if err != nil {
		return domain.ModalityUnknown, fmt.Errorf("%w: DICOM modality tag missing", domain.ErrInvalidModality)
	}
	values, ok := elem.Value.GetValue().([]string)
	if !ok || len(values) == 0 {
		return domain.ModalityUnknown, fmt.Errorf("%w: DICOM modality tag is empty", domain.ErrInvalidModality)
	}
	return MapModality(values[0])
}

// MapModality maps a DICOM modality code to an exam modality. Only CT and MR are supported.
func MapModality(code string) (domain.Modality, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "CT":
		return domain.ModalityCT, nil
	case "MR":
		return domain.ModalityMR, nil
	default:
		return domain.ModalityUnknown, fmt.Errorf("%w: %q", domain.ErrUnsupportedModality, code)
	}
}
