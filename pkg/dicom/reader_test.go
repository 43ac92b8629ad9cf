package dicom

import (
	"bytes"
	"io"
	"testing"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_ImplicitVR(t *testing.T) {
	pix := []byte{0, 64, 128, 255, 10, 20}
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3.4.5", string(ImplicitVRLittleEndian)),
		WithElement(tag.SOPClassUID, SecondaryCaptureImageStorageUID),
		WithElement(tag.SOPInstanceUID, "1.2.3.4.5"),
		WithElement(tag.PatientName, "Doe^Jane"),
		WithElement(tag.PatientID, "12345"),
		WithElement(tag.Rows, 2),
		WithElement(tag.Columns, 3),
		WithElement(tag.BitsAllocated, 8),
		WithElement(tag.InstanceNumber, 1),
		WithPixelBytes(2, 3, pix),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Write(&buf, ds)
	require.NoError(t, err)

	got, err := Parse(&buf)
	require.NoError(t, err)

	assert.Equal(t, ImplicitVRLittleEndian, GetTransferSyntax(got))
	assert.Equal(t, "Doe^Jane", got.GetString(tag.PatientName))
	assert.Equal(t, "12345", got.GetString(tag.PatientID))
	assert.Equal(t, "1.2.3.4.5", got.GetString(tag.SOPInstanceUID))
	assert.Equal(t, "1.2.3.4.5", got.GetString(tag.MediaStorageSOPInstanceUID))
	assert.Equal(t, 2, GetRows(got))
	assert.Equal(t, 3, GetColumns(got))
	assert.Equal(t, 1, got.GetInt(tag.InstanceNumber))
	assert.Equal(t, ImplementationClassUID, got.GetString(tag.ImplementationClassUID))

	data, err := GetPixelBytes(got)
	require.NoError(t, err)
	assert.Equal(t, pix, data)
}

func TestRoundTrip_ExplicitVR(t *testing.T) {
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3", string(ExplicitVRLittleEndian)),
		WithElement(tag.PatientID, "E1"),
		WithElement(tag.Rows, 1),
		WithElement(tag.Columns, 1),
		WithElement(tag.BitsAllocated, 8),
		WithPixelBytes(1, 1, []byte{7}),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Write(&buf, ds)
	require.NoError(t, err)

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, "E1", got.GetString(tag.PatientID))
	elem, ok := got.Get(tag.PixelData)
	require.True(t, ok)
	assert.Equal(t, "OW", elem.VR)

	data, err := GetPixelBytes(got)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, data)
}

func TestParse_NotPart10(t *testing.T) {
	_, err := Parse(bytes.NewReader(make([]byte, 200)))
	assert.ErrorIs(t, err, ErrNotPart10)
}

func TestParse_Truncated(t *testing.T) {
	_, err := Parse(bytes.NewReader(make([]byte, 10)))
	assert.Error(t, err)
}

func TestRoundTrip_Latin1Names(t *testing.T) {
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3", string(ImplicitVRLittleEndian)),
		WithElement(tag.SpecificCharacterSet, SpecificCharacterSet),
		WithElement(tag.PatientName, "MUÑOZ JOSE"),
		WithElement(tag.StudyDescription, "Radiografía panorámica"),
		WithElement(tag.Rows, 1),
		WithElement(tag.Columns, 1),
		WithElement(tag.BitsAllocated, 8),
		WithPixelBytes(1, 1, []byte{7}),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Write(&buf, ds)
	require.NoError(t, err)
	raw := buf.Bytes()
	assert.True(t, bytes.Contains(raw, []byte{'M', 'U', 0xD1, 'O', 'Z'}), "Ñ is written as one Latin-1 byte")
	assert.False(t, bytes.Contains(raw, []byte{0xC3, 0x91}), "no UTF-8 sequence under ISO_IR 100")

	got, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "MUÑOZ JOSE", got.GetString(tag.PatientName))
	assert.Equal(t, "Radiografía panorámica", got.GetString(tag.StudyDescription))
	assert.Equal(t, SpecificCharacterSet, got.GetString(tag.SpecificCharacterSet))
}

func TestWrite_UnrepresentableName(t *testing.T) {
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3", string(ImplicitVRLittleEndian)),
		WithElement(tag.PatientName, "王^小明"),
	)
	require.NoError(t, err)

	_, err = Write(&bytes.Buffer{}, ds)
	assert.ErrorContains(t, err, "ISO_IR 100")
}

func TestParse_DeclaredLengthBeyondData(t *testing.T) {
	ds, err := NewDataset(
		WithFileMeta(SecondaryCaptureImageStorageUID, "1.2.3", string(ImplicitVRLittleEndian)),
	)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = Write(&buf, ds)
	require.NoError(t, err)

	// (0010,0010) claiming nearly 4 GiB followed by a few bytes
	buf.Write([]byte{0x10, 0x00, 0x10, 0x00, 0xF0, 0xFF, 0xFF, 0xFF, 'D', 'O', 'E'})

	_, err = Parse(&buf)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
