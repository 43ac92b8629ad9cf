package dicom

import (
	"fmt"
	"time"

	"github.com/jpfielding/img2pacs/pkg/dicom/module"
	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/jpfielding/img2pacs/pkg/dicom/transfer"
)

// SecondaryCapture represents a single-frame Secondary Capture Image IOD
// holding 8-bit grayscale samples
type SecondaryCapture struct {
	// Modules
	Patient   module.PatientModule
	Study     module.GeneralStudyModule
	Series    module.GeneralSeriesModule
	Equipment module.SCEquipmentModule
	SOPCommon module.SOPCommonModule

	// Image Attributes
	InstanceNumber    int
	SamplesPerPixel   int
	PhotometricInterp string // MONOCHROME2
	Rows              int
	Columns           int
	BitsAllocated     int
	BitsStored        int
	HighBit           int
	PixelRepresent    int // 0 unsigned

	// Pixel Data, row-major, one byte per sample
	Pixels []byte
}

// NewSecondaryCapture creates a Secondary Capture with the fixed image
// attributes of an 8-bit grayscale capture, stamped with t
func NewSecondaryCapture(t time.Time) *SecondaryCapture {
	sc := &SecondaryCapture{
		Study: module.NewGeneralStudyModule(t),
		Series: module.GeneralSeriesModule{
			Modality:     "OT",
			SeriesNumber: 1,
		},
		Equipment: module.SCEquipmentModule{
			ConversionType: "WSD",
		},
		SOPCommon:         module.NewSOPCommonModule(),
		InstanceNumber:    1,
		SamplesPerPixel:   1,
		PhotometricInterp: "MONOCHROME2",
		BitsAllocated:     8,
		BitsStored:        8,
		HighBit:           7,
		PixelRepresent:    0,
	}
	sc.SOPCommon.SOPClassUID = SecondaryCaptureImageStorageUID
	return sc
}

// SetPixelData sets native 8-bit pixel data.
//
// Parameters:
//   - rows: Image height in pixels
//   - cols: Image width in pixels
//   - data: Samples in row-major order (left-to-right, top-to-bottom)
func (sc *SecondaryCapture) SetPixelData(rows, cols int, data []byte) {
	sc.Rows = rows
	sc.Columns = cols
	sc.Pixels = data
}

// GetDataset builds and returns the Dataset. Missing UIDs are generated
// on first call; the SOP class and instance are mirrored into the File
// Meta group so the two always agree.
func (sc *SecondaryCapture) GetDataset() (*Dataset, error) {
	if sc.Rows < 1 || sc.Rows > 0xFFFF || sc.Columns < 1 || sc.Columns > 0xFFFF {
		return nil, fmt.Errorf("image dimensions %dx%d out of range", sc.Rows, sc.Columns)
	}

	if sc.SOPCommon.SOPClassUID == "" {
		sc.SOPCommon.SOPClassUID = SecondaryCaptureImageStorageUID
	}
	if sc.SOPCommon.SOPInstanceUID == "" {
		sc.SOPCommon.SOPInstanceUID = NewUID()
	}
	if sc.Study.StudyInstanceUID == "" {
		sc.Study.StudyInstanceUID = NewUID()
	}
	if sc.Series.SeriesInstanceUID == "" {
		sc.Series.SeriesInstanceUID = NewUID()
	}

	opts := make([]Option, 0, 24)

	// 1. File Meta Information
	opts = append(opts, WithFileMeta(
		sc.SOPCommon.SOPClassUID,
		sc.SOPCommon.SOPInstanceUID,
		string(transfer.ImplicitVRLittleEndian),
	))

	// 2. Modules
	opts = append(opts,
		WithModule(&sc.Patient),
		WithModule(&sc.Study),
		WithModule(&sc.Series),
		WithModule(&sc.Equipment),
		WithModule(&sc.SOPCommon),
	)

	// 3. Image Pixel Module & General Image
	opts = append(opts,
		WithElement(tag.InstanceNumber, sc.InstanceNumber),
		WithElement(tag.SamplesPerPixel, sc.SamplesPerPixel),
		WithElement(tag.PhotometricInterpretation, sc.PhotometricInterp),
		WithElement(tag.Rows, sc.Rows),
		WithElement(tag.Columns, sc.Columns),
		WithElement(tag.BitsAllocated, sc.BitsAllocated),
		WithElement(tag.BitsStored, sc.BitsStored),
		WithElement(tag.HighBit, sc.HighBit),
		WithElement(tag.PixelRepresentation, sc.PixelRepresent),
	)

	// 4. Pixel Data
	opts = append(opts, WithPixelBytes(sc.Rows, sc.Columns, sc.Pixels))

	return NewDataset(opts...)
}

// Write saves the Secondary Capture to a Part 10 file (convenience wrapper)
func (sc *SecondaryCapture) Write(path string) (int64, error) {
	dataset, err := sc.GetDataset()
	if err != nil {
		return 0, err
	}
	return WriteFile(path, dataset)
}
