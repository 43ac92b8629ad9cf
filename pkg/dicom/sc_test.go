package dicom_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jpfielding/img2pacs/pkg/dicom"
	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdicom "github.com/suyashkumar/dicom"
	stag "github.com/suyashkumar/dicom/pkg/tag"
)

func gradient(rows, cols int) []byte {
	pix := make([]byte, rows*cols)
	for i := range pix {
		pix[i] = byte(i % 256)
	}
	return pix
}

func TestSecondaryCapture_Dataset(t *testing.T) {
	when := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	sc := dicom.NewSecondaryCapture(when)
	sc.Patient.PatientID = "12345"
	sc.Patient.PatientName = "Doe^Jane"
	sc.Study.StudyDescription = "Chest"
	sc.Study.AccessionNumber = "A1"
	sc.SetPixelData(80, 100, gradient(80, 100))

	ds, err := sc.GetDataset()
	require.NoError(t, err)

	assert.Equal(t, dicom.SecondaryCaptureImageStorageUID, ds.GetString(tag.SOPClassUID))
	assert.Equal(t, ds.GetString(tag.SOPClassUID), ds.GetString(tag.MediaStorageSOPClassUID))
	assert.Equal(t, ds.GetString(tag.SOPInstanceUID), ds.GetString(tag.MediaStorageSOPInstanceUID))
	assert.Equal(t, string(dicom.ImplicitVRLittleEndian), ds.GetString(tag.TransferSyntaxUID))
	assert.Equal(t, "OT", dicom.GetModality(ds))
	assert.Equal(t, "MONOCHROME2", ds.GetString(tag.PhotometricInterpretation))
	assert.Equal(t, "20240309", ds.GetString(tag.StudyDate))
	assert.Equal(t, "140507", ds.GetString(tag.StudyTime))
	assert.Equal(t, "1", ds.GetString(tag.SeriesNumber))
	assert.Equal(t, 1, ds.GetInt(tag.InstanceNumber))
	assert.Equal(t, 8, ds.GetInt(tag.BitsAllocated))
	assert.Equal(t, 8, ds.GetInt(tag.BitsStored))
	assert.Equal(t, 7, ds.GetInt(tag.HighBit))
	assert.Equal(t, 0, ds.GetInt(tag.PixelRepresentation))
	assert.Equal(t, 1, ds.GetInt(tag.SamplesPerPixel))
	assert.True(t, strings.HasPrefix(ds.GetString(tag.StudyInstanceUID), dicom.UUIDRoot))

	res := dicom.ValidateSecondaryCapture(ds)
	assert.True(t, res.IsValid(), "%v", res.Errors)
	assert.NoError(t, res.Err())
}

func TestSecondaryCapture_DistinctUIDs(t *testing.T) {
	sc := dicom.NewSecondaryCapture(time.Now())
	sc.SetPixelData(1, 1, []byte{0})
	ds, err := sc.GetDataset()
	require.NoError(t, err)

	uids := map[string]bool{
		ds.GetString(tag.StudyInstanceUID):  true,
		ds.GetString(tag.SeriesInstanceUID): true,
		ds.GetString(tag.SOPInstanceUID):    true,
	}
	assert.Len(t, uids, 3)
}

func TestSecondaryCapture_RejectsBadDimensions(t *testing.T) {
	sc := dicom.NewSecondaryCapture(time.Now())
	sc.SetPixelData(0, 10, nil)
	_, err := sc.GetDataset()
	assert.Error(t, err)

	sc.SetPixelData(2, 2, []byte{1, 2, 3})
	_, err = sc.GetDataset()
	assert.Error(t, err)
}

func TestSecondaryCapture_WriteAndReadBack(t *testing.T) {
	sc := dicom.NewSecondaryCapture(time.Now())
	sc.Patient.PatientID = "P-7"
	sc.Patient.PatientName = "Roe^Rick"
	pix := gradient(3, 5)
	sc.SetPixelData(3, 5, pix)

	path := filepath.Join(t.TempDir(), "img.dcm")
	n, err := sc.Write(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), n)

	ds, err := dicom.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, dicom.IsSecondaryCapture(ds))
	assert.Equal(t, "Roe^Rick", ds.GetString(tag.PatientName))
	got, err := dicom.GetPixelBytes(ds)
	require.NoError(t, err)
	assert.Equal(t, pix, got)
}

// An independent parser must accept what we write
func TestSecondaryCapture_ParsesWithSuyashkumar(t *testing.T) {
	sc := dicom.NewSecondaryCapture(time.Now())
	sc.Patient.PatientID = "12345"
	sc.Patient.PatientName = "Doe^Jane"
	sc.SetPixelData(80, 100, gradient(80, 100))

	path := filepath.Join(t.TempDir(), "conformance.dcm")
	_, err := sc.Write(path)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	parsed, err := sdicom.Parse(f, info.Size(), nil, sdicom.SkipPixelData())
	require.NoError(t, err)

	rows, err := parsed.FindElementByTag(stag.Rows)
	require.NoError(t, err)
	assert.Equal(t, []int{80}, sdicom.MustGetInts(rows.Value))

	cols, err := parsed.FindElementByTag(stag.Columns)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, sdicom.MustGetInts(cols.Value))

	name, err := parsed.FindElementByTag(stag.PatientName)
	require.NoError(t, err)
	names := sdicom.MustGetStrings(name.Value)
	require.Len(t, names, 1)
	assert.Equal(t, "Doe^Jane", strings.TrimRight(names[0], " \x00"))
}
