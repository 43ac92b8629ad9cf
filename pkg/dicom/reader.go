package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/jpfielding/img2pacs/pkg/dicom/transfer"
	"github.com/jpfielding/img2pacs/pkg/dicom/vr"
)

// ErrNotPart10 is returned when a stream lacks the DICM magic
var ErrNotPart10 = errors.New("invalid DICOM file: missing DICM magic")

// Reader reads Part 10 files in uncompressed little endian transfer syntaxes
type Reader struct {
	r          io.Reader
	syntax     transfer.Syntax
	explicitVR bool
}

// NewReader creates a new reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:          r,
		explicitVR: true,
	}
}

// Parse reads a complete Part 10 stream
func Parse(r io.Reader) (*Dataset, error) {
	return NewReader(r).ReadDataset()
}

// ReadDataset reads the complete dataset
func (r *Reader) ReadDataset() (*Dataset, error) {
	ds := &Dataset{
		Elements: make(map[Tag]*Element),
	}

	preamble := make([]byte, 128)
	if _, err := io.ReadFull(r.r, preamble); err != nil {
		return nil, fmt.Errorf("failed to read preamble: %w", err)
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return nil, fmt.Errorf("failed to read DICM magic: %w", err)
	}
	if string(magic) != "DICM" {
		return nil, ErrNotPart10
	}

	// Group 0002 is ALWAYS Explicit VR Little Endian
	r.explicitVR = true
	inMeta := true

	for {
		t, err := r.readTag()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tag: %w", err)
		}

		if inMeta && !t.IsFileMeta() {
			inMeta = false
			if r.syntax == "" {
				// No transfer syntax in the meta group, assume the DICOM default
				r.syntax = transfer.ImplicitVRLittleEndian
			}
			if !r.syntax.IsSupported() {
				return nil, fmt.Errorf("unsupported transfer syntax %s", r.syntax.Name())
			}
			r.explicitVR = r.syntax.IsExplicitVR()
		}

		elem, err := r.readElementWithTag(t)
		if err != nil {
			return nil, fmt.Errorf("failed to read element %v: %w", t, err)
		}
		ds.Elements[elem.Tag] = elem

		if t == tag.TransferSyntaxUID {
			if s, ok := elem.Value.(string); ok {
				r.syntax = transfer.FromUID(s)
			}
		}
	}

	return ds, nil
}

// readElementWithTag reads a DICOM element after the tag has been read
func (r *Reader) readElementWithTag(t Tag) (*Element, error) {
	var v string
	var vl uint32

	if r.explicitVR {
		vrBytes := make([]byte, 2)
		if _, err := io.ReadFull(r.r, vrBytes); err != nil {
			return nil, err
		}
		v = string(vrBytes)

		if vr.VR(v).HasLongLength() {
			reserved := make([]byte, 2)
			if _, err := io.ReadFull(r.r, reserved); err != nil {
				return nil, err
			}
			if err := binary.Read(r.r, binary.LittleEndian, &vl); err != nil {
				return nil, err
			}
		} else {
			var vl16 uint16
			if err := binary.Read(r.r, binary.LittleEndian, &vl16); err != nil {
				return nil, err
			}
			vl = uint32(vl16)
		}
	} else {
		// Implicit VR: VL is always 4 bytes, VR comes from the dictionary
		if err := binary.Read(r.r, binary.LittleEndian, &vl); err != nil {
			return nil, err
		}
		v = t.LookupVR()
	}

	if vl == 0xFFFFFFFF {
		if err := r.skipUndefinedLength(); err != nil {
			return nil, err
		}
		return &Element{Tag: t, VR: v, Value: nil}, nil
	}

	// the buffer grows with the bytes actually present, not the declared length
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.r, int64(vl)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	data := buf.Bytes()

	return &Element{
		Tag:   t,
		VR:    v,
		Value: parseValue(v, data),
	}, nil
}

// readTag reads a DICOM tag
func (r *Reader) readTag() (Tag, error) {
	var group, element uint16
	if err := binary.Read(r.r, binary.LittleEndian, &group); err != nil {
		return Tag{}, err
	}
	if err := binary.Read(r.r, binary.LittleEndian, &element); err != nil {
		return Tag{}, err
	}
	return Tag{Group: group, Element: element}, nil
}

// skipUndefinedLength skips a sequence with undefined length up to and
// including its Sequence Delimitation Item (FFFE,E0DD)
func (r *Reader) skipUndefinedLength() error {
	for {
		itemTag, err := r.readTag()
		if err != nil {
			return fmt.Errorf("reading sequence item tag: %w", err)
		}

		if itemTag.Group == 0xFFFE {
			var itemLen uint32
			if err := binary.Read(r.r, binary.LittleEndian, &itemLen); err != nil {
				return fmt.Errorf("reading delimiter length: %w", err)
			}
			switch itemTag {
			case tag.SequenceDelimitationItem:
				return nil
			case tag.ItemDelimitationItem:
				continue
			case tag.Item:
				if itemLen != 0xFFFFFFFF && itemLen > 0 {
					if _, err := io.CopyN(io.Discard, r.r, int64(itemLen)); err != nil {
						return fmt.Errorf("skipping item data: %w", err)
					}
				}
				continue
			}
		}

		if _, err := r.readElementWithTag(itemTag); err != nil {
			return err
		}
	}
}

// parseValue converts raw bytes to typed value based on VR
func parseValue(v string, data []byte) interface{} {
	switch vr.VR(v) {
	case vr.US:
		if len(data) == 2 {
			return binary.LittleEndian.Uint16(data)
		}
		values := make([]uint16, len(data)/2)
		for i := range values {
			values[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		return values
	case vr.UL:
		if len(data) == 4 {
			return binary.LittleEndian.Uint32(data)
		}
		values := make([]uint32, len(data)/4)
		for i := range values {
			values[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return values
	}
	if vr.VR(v).IsString() {
		// String types - trim NUL and space padding
		s := string(data)
		if vr.VR(v).IsText() {
			s = decodeText(data)
		}
		for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
			s = s[:len(s)-1]
		}
		return s
	}
	return data
}
