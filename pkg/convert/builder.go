package convert

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/jpfielding/img2pacs/pkg/dicom"
	"github.com/jpfielding/img2pacs/pkg/raster"
)

// Builder assembles Secondary Capture objects. Now and NewUID default to the
// wall clock and dicom.NewUID.
type Builder struct {
	Now    func() time.Time
	NewUID func() string
}

// Build makes a fresh object for one image. Every instance UID is newly
// generated; the SOP class and transfer syntax are fixed.
func (b Builder) Build(img *raster.Gray, identity PatientIdentity, study StudyContext) (*dicom.SecondaryCapture, error) {
	if img == nil {
		return nil, errors.New("no image")
	}
	now, newUID := b.Now, b.NewUID
	if now == nil {
		now = time.Now
	}
	if newUID == nil {
		newUID = dicom.NewUID
	}

	sc := dicom.NewSecondaryCapture(now())
	sc.Patient.PatientID = identity.PatientID
	sc.Patient.PatientName = identity.PatientName

	sc.Study.StudyInstanceUID = newUID()
	sc.Study.StudyDescription = study.StudyDescription
	sc.Study.AccessionNumber = study.AccessionNumber
	sc.Study.StudyID = study.StudyID

	sc.Series.SeriesInstanceUID = newUID()
	sc.SOPCommon.SOPInstanceUID = newUID()

	sc.SetPixelData(img.Rows, img.Columns, img.Pix)

	// surface dimension, length and character set problems here rather than at write time
	ds, err := sc.GetDataset()
	if err != nil {
		return nil, err
	}
	if err := dicom.ValidateSecondaryCapture(ds).Err(); err != nil {
		return nil, err
	}
	return sc, nil
}

// ObjectPath derives where the object for an image is written: the image
// path with its final extension replaced by .dcm, or .dcm appended when
// there is none
func ObjectPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + dicom.Extension
}
