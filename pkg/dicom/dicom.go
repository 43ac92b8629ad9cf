// Package dicom provides a native Go implementation for writing and reading
// the single-frame Secondary Capture objects produced by img2pacs.
//
// This package provides:
//   - A Dataset model with functional options for construction
//   - The Secondary Capture IOD (8-bit MONOCHROME2, Implicit VR Little Endian)
//   - A Part 10 writer and reader for uncompressed little endian syntaxes
//
// Basic usage:
//
//	sc := dicom.NewSecondaryCapture(time.Now())
//	sc.Patient.PatientID = "12345"
//	sc.SetPixelData(rows, cols, pix)
//	if _, err := sc.Write("/path/to/image.dcm"); err != nil {
//		log.Fatal(err)
//	}
//
//	ds, err := dicom.ReadFile("/path/to/image.dcm")
package dicom

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/jpfielding/img2pacs/pkg/dicom/transfer"
)

// Re-export commonly used types from subpackages
type (
	// TransferSyntax represents a DICOM transfer syntax
	TransferSyntax = transfer.Syntax
)

// Transfer syntax constants
const (
	ExplicitVRLittleEndian = transfer.ExplicitVRLittleEndian
	ImplicitVRLittleEndian = transfer.ImplicitVRLittleEndian
)

// SecondaryCaptureImageStorageUID is the SOP class of every object this module builds
const SecondaryCaptureImageStorageUID = "1.2.840.10008.5.1.4.1.1.7"

// Extension is the file suffix used for written objects
const Extension = ".dcm"

// ReadFile reads a DICOM file from disk
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	ds, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ds, nil
}

// IsSecondaryCapture returns true if the dataset is a Secondary Capture image
func IsSecondaryCapture(ds *Dataset) bool {
	return ds.GetString(tag.SOPClassUID) == SecondaryCaptureImageStorageUID ||
		ds.GetString(tag.MediaStorageSOPClassUID) == SecondaryCaptureImageStorageUID
}

// GetTransferSyntax returns the transfer syntax named by the File Meta group,
// defaulting to Explicit VR Little Endian when absent
func GetTransferSyntax(ds *Dataset) TransferSyntax {
	if s := ds.GetString(tag.TransferSyntaxUID); s != "" {
		return transfer.FromUID(s)
	}
	return transfer.ExplicitVRLittleEndian
}

// GetModality returns the modality string from the dataset
func GetModality(ds *Dataset) string {
	return ds.GetString(tag.Modality)
}

// GetRows returns the number of rows
func GetRows(ds *Dataset) int {
	return ds.GetInt(tag.Rows)
}

// GetColumns returns the number of columns
func GetColumns(ds *Dataset) int {
	return ds.GetInt(tag.Columns)
}

// GetBitsAllocated returns bits allocated per sample
func GetBitsAllocated(ds *Dataset) int {
	return ds.GetInt(tag.BitsAllocated)
}

// GetPixelBytes returns the native pixel data, trimmed of the even-length pad byte
func GetPixelBytes(ds *Dataset) ([]byte, error) {
	elem, ok := ds.Get(tag.PixelData)
	if !ok {
		return nil, fmt.Errorf("no pixel data")
	}
	data, ok := elem.GetBytes()
	if !ok {
		return nil, fmt.Errorf("pixel data has unexpected type %T", elem.Value)
	}
	n := GetRows(ds) * GetColumns(ds) * ((GetBitsAllocated(ds) + 7) / 8)
	if n > 0 && len(data) > n {
		data = data[:n]
	}
	if n > 0 && len(data) < n {
		return nil, fmt.Errorf("pixel data length %d, expected %d", len(data), n)
	}
	return data, nil
}
