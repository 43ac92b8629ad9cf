package convert

import (
	"fmt"
	"testing"
	"time"

	"github.com/jpfielding/img2pacs/pkg/dicom"
	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/jpfielding/img2pacs/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayImage(rows, cols int) *raster.Gray {
	pix := make([]byte, rows*cols)
	for i := range pix {
		pix[i] = byte(i)
	}
	return &raster.Gray{Rows: rows, Columns: cols, Pix: pix}
}

var (
	testIdentity = PatientIdentity{PatientID: "123456", PatientName: "DOE JOHN"}
	testStudy    = StudyContext{StudyDescription: "Panoramic", AccessionNumber: "ACC1", StudyID: "78910"}
)

func TestBuild_Attributes(t *testing.T) {
	n := 0
	b := Builder{
		Now: func() time.Time { return time.Date(2024, 12, 19, 16, 40, 38, 0, time.Local) },
		NewUID: func() string {
			n++
			return fmt.Sprintf("2.25.%d", n)
		},
	}
	sc, err := b.Build(grayImage(80, 100), testIdentity, testStudy)
	require.NoError(t, err)

	ds, err := sc.GetDataset()
	require.NoError(t, err)
	assert.Equal(t, 80, dicom.GetRows(ds))
	assert.Equal(t, 100, dicom.GetColumns(ds))
	assert.Equal(t, 8, dicom.GetBitsAllocated(ds))
	assert.Equal(t, 0, ds.GetInt(tag.PixelRepresentation))
	assert.Equal(t, "20241219", ds.GetString(tag.StudyDate))
	assert.Equal(t, "164038", ds.GetString(tag.StudyTime))
	assert.Equal(t, "DOE JOHN", ds.GetString(tag.PatientName))
	assert.Equal(t, "123456", ds.GetString(tag.PatientID))
	assert.Equal(t, "Panoramic", ds.GetString(tag.StudyDescription))
	assert.Equal(t, "ACC1", ds.GetString(tag.AccessionNumber))
	assert.Equal(t, "78910", ds.GetString(tag.StudyID))
	assert.Equal(t, "OT", ds.GetString(tag.Modality))
	assert.Equal(t, "1", ds.GetString(tag.SeriesNumber))
	assert.Equal(t, 1, ds.GetInt(tag.InstanceNumber))
	assert.Equal(t, "2.25.1", ds.GetString(tag.StudyInstanceUID))
	assert.Equal(t, "2.25.2", ds.GetString(tag.SeriesInstanceUID))
	assert.Equal(t, "2.25.3", ds.GetString(tag.SOPInstanceUID))
	assert.Equal(t, dicom.SecondaryCaptureImageStorageUID, ds.GetString(tag.MediaStorageSOPClassUID))
	assert.Equal(t, ds.GetString(tag.SOPInstanceUID), ds.GetString(tag.MediaStorageSOPInstanceUID))
	assert.Equal(t, string(dicom.ImplicitVRLittleEndian), ds.GetString(tag.TransferSyntaxUID))
}

func TestBuild_Dimensions(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {1, 10000}, {10000, 1}, {37, 113}} {
		sc, err := Builder{}.Build(grayImage(dims[0], dims[1]), testIdentity, testStudy)
		require.NoError(t, err)
		assert.Equal(t, dims[0], sc.Rows)
		assert.Equal(t, dims[1], sc.Columns)
		assert.Equal(t, 8, sc.BitsAllocated)
		assert.Equal(t, 0, sc.PixelRepresent)
	}
}

func TestBuild_FreshUIDs(t *testing.T) {
	img := grayImage(4, 4)
	a, err := Builder{}.Build(img, testIdentity, testStudy)
	require.NoError(t, err)
	b, err := Builder{}.Build(img, testIdentity, testStudy)
	require.NoError(t, err)

	assert.NotEqual(t, a.SOPCommon.SOPInstanceUID, b.SOPCommon.SOPInstanceUID)
	assert.NotEqual(t, a.Study.StudyInstanceUID, b.Study.StudyInstanceUID)
	assert.NotEqual(t, a.Series.SeriesInstanceUID, b.Series.SeriesInstanceUID)
}

func TestBuild_NoImage(t *testing.T) {
	_, err := Builder{}.Build(nil, testIdentity, testStudy)
	assert.Error(t, err)
}

func TestObjectPath(t *testing.T) {
	tests := map[string]string{
		"a/b.jpeg":        "a/b.dcm",
		"a/b.jpg":         "a/b.dcm",
		"a/b":             "a/b.dcm",
		"a/photo.jpg.png": "a/photo.jpg.dcm",
		"dir.v2/scan":     "dir.v2/scan.dcm",
	}
	for in, want := range tests {
		assert.Equal(t, want, ObjectPath(in), in)
	}
}

func TestBuild_ValueConstraints(t *testing.T) {
	study := testStudy
	study.AccessionNumber = "ACC-0123456789-XYZ"
	_, err := Builder{}.Build(grayImage(2, 2), testIdentity, study)
	assert.ErrorContains(t, err, "exceeds 16 characters")

	_, err = Builder{}.Build(grayImage(2, 2), PatientIdentity{PatientID: "1", PatientName: "王 小明"}, testStudy)
	assert.ErrorContains(t, err, "ISO_IR 100")

	sc, err := Builder{}.Build(grayImage(2, 2), PatientIdentity{PatientID: "1", PatientName: "MUÑOZ JOSE"}, testStudy)
	require.NoError(t, err)
	assert.Equal(t, "MUÑOZ JOSE", sc.Patient.PatientName)
}
