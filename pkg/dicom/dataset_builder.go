package dicom

import (
	"fmt"

	"github.com/jpfielding/img2pacs/pkg/dicom/module"
	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
)

// Option configures a Dataset during construction
type Option func(*Dataset) error

// NewDataset creates a Dataset with the given options
func NewDataset(opts ...Option) (*Dataset, error) {
	ds := &Dataset{Elements: make(map[Tag]*Element)}
	for _, opt := range opts {
		if err := opt(ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// WithElement adds a single element to the dataset, taking the VR from the dictionary
func WithElement(t tag.Tag, value interface{}) Option {
	return WithElementVR(t, t.LookupVR(), value)
}

// WithElementVR adds a single element with an explicit VR
func WithElementVR(t tag.Tag, vr string, value interface{}) Option {
	return func(ds *Dataset) error {
		if len(vr) != 2 {
			return fmt.Errorf("invalid VR %q for %v", vr, t)
		}
		ds.Elements[t] = &Element{
			Tag:   t,
			VR:    vr,
			Value: value,
		}
		return nil
	}
}

// WithFileMeta adds standard file meta information elements.
// The group length is computed by the writer.
func WithFileMeta(sopClassUID, sopInstanceUID, transferSyntax string) Option {
	return func(ds *Dataset) error {
		opts := []Option{
			WithElement(tag.FileMetaInformationVersion, []byte{0x00, 0x01}),
			WithElement(tag.MediaStorageSOPClassUID, sopClassUID),
			WithElement(tag.MediaStorageSOPInstanceUID, sopInstanceUID),
			WithElement(tag.TransferSyntaxUID, transferSyntax),
			WithElement(tag.ImplementationClassUID, ImplementationClassUID),
			WithElement(tag.ImplementationVersionName, ImplementationVersionName),
		}
		for _, opt := range opts {
			if err := opt(ds); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithModule adds all elements from a module's ToTags() result
func WithModule(m module.IODModule) Option {
	return func(ds *Dataset) error {
		for _, el := range m.ToTags() {
			if err := WithElement(el.Tag, el.Value)(ds); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithPixelBytes adds native 8-bit pixel data for a single frame of rows x cols samples
func WithPixelBytes(rows, cols int, pix []byte) Option {
	return func(ds *Dataset) error {
		if rows <= 0 || cols <= 0 {
			return fmt.Errorf("invalid image dimensions %dx%d", rows, cols)
		}
		if len(pix) != rows*cols {
			return fmt.Errorf("pixel data length %d does not match %dx%d", len(pix), rows, cols)
		}
		data := make([]byte, len(pix))
		copy(data, pix)
		// Implicit VR Little Endian pixel data is always OW
		return WithElementVR(tag.PixelData, "OW", data)(ds)
	}
}
