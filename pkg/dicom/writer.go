package dicom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/jpfielding/img2pacs/pkg/dicom/tag"
	"github.com/jpfielding/img2pacs/pkg/dicom/vr"
)

// WriteFile writes a dataset to a Part 10 file, replacing any existing file
func WriteFile(path string, ds *Dataset) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := Write(f, ds)
	if err != nil {
		f.Close()
		os.Remove(path)
		return n, err
	}
	return n, f.Close()
}

// Write writes a dataset as a Part 10 stream: preamble, DICM magic, File Meta
// group in Explicit VR Little Endian, then the body in the dataset's transfer syntax.
func Write(w io.Writer, ds *Dataset) (int64, error) {
	cw := &CountingWriter{Writer: w}

	syntax := GetTransferSyntax(ds)
	if !syntax.IsSupported() {
		return 0, fmt.Errorf("unsupported transfer syntax %s", syntax.Name())
	}

	// 1. Preamble (128 bytes 0x00)
	if _, err := cw.Write(make([]byte, 128)); err != nil {
		return cw.Count.Load(), err
	}

	// 2. DICM Magic
	if _, err := cw.Write([]byte("DICM")); err != nil {
		return cw.Count.Load(), err
	}

	// 3. File Meta group, always explicit
	meta, err := encodeFileMeta(ds)
	if err != nil {
		return cw.Count.Load(), err
	}
	if _, err := cw.Write(meta); err != nil {
		return cw.Count.Load(), err
	}

	// 4. Body
	explicit := syntax.IsExplicitVR()
	for _, elem := range ds.Sorted(func(t Tag) bool { return !t.IsFileMeta() }) {
		if err := writeElement(cw, elem, explicit); err != nil {
			return cw.Count.Load(), fmt.Errorf("failed to write element %v: %w", elem.Tag, err)
		}
	}
	return cw.Count.Load(), nil
}

// encodeFileMeta encodes group 0002 with a leading group length element
func encodeFileMeta(ds *Dataset) ([]byte, error) {
	var body bytes.Buffer
	for _, elem := range ds.Sorted(func(t Tag) bool { return t.IsFileMeta() && t.Element != 0x0000 }) {
		if err := writeElement(&body, elem, true); err != nil {
			return nil, fmt.Errorf("failed to write meta element %v: %w", elem.Tag, err)
		}
	}

	var buf bytes.Buffer
	groupLength := &Element{
		Tag:   tag.FileMetaInformationGroupLength,
		VR:    "UL",
		Value: uint32(body.Len()),
	}
	if err := writeElement(&buf, groupLength, true); err != nil {
		return nil, err
	}
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

func writeElement(w io.Writer, elem *Element, explicit bool) error {
	v := vr.VR(elem.VR)

	valBytes, err := encodeValue(elem.Value, v)
	if err != nil {
		return err
	}
	if len(valBytes)%2 != 0 {
		valBytes = append(valBytes, v.PadByte())
	}

	var hdr [12]byte
	binary.LittleEndian.PutUint16(hdr[0:], elem.Tag.Group)
	binary.LittleEndian.PutUint16(hdr[2:], elem.Tag.Element)
	n := 4

	switch {
	case !explicit:
		binary.LittleEndian.PutUint32(hdr[n:], uint32(len(valBytes)))
		n += 4
	case v.HasLongLength():
		copy(hdr[n:], string(v))
		// 2 reserved bytes stay 0x00
		binary.LittleEndian.PutUint32(hdr[n+4:], uint32(len(valBytes)))
		n += 8
	default:
		if len(valBytes) > 0xFFFF {
			return fmt.Errorf("value of %d bytes too long for VR %s", len(valBytes), v)
		}
		copy(hdr[n:], string(v))
		binary.LittleEndian.PutUint16(hdr[n+2:], uint16(len(valBytes)))
		n += 4
	}

	if _, err := w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err = w.Write(valBytes)
	return err
}

// encodeValue returns the little endian encoding of a value, unpadded
func encodeValue(value interface{}, v vr.VR) ([]byte, error) {
	if value == nil {
		return []byte{}, nil
	}

	switch val := value.(type) {
	case string:
		if v.IsText() {
			return encodeText(val)
		}
		return []byte(val), nil
	case []string:
		// Multi-valued string (backslash separated)
		joined := strings.Join(val, "\\")
		if v.IsText() {
			return encodeText(joined)
		}
		return []byte(joined), nil
	case uint16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, val)
		return b, nil
	case []uint16:
		b := make([]byte, len(val)*2)
		for i, u := range val {
			binary.LittleEndian.PutUint16(b[i*2:], u)
		}
		return b, nil
	case uint32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, val)
		return b, nil
	case int:
		switch v {
		case vr.US, vr.SS:
			if val < -0x8000 || val > 0xFFFF {
				return nil, fmt.Errorf("value %d out of range for VR %s", val, v)
			}
			b := make([]byte, 2)
			binary.LittleEndian.PutUint16(b, uint16(val))
			return b, nil
		case vr.UL, vr.SL:
			b := make([]byte, 4)
			binary.LittleEndian.PutUint32(b, uint32(val))
			return b, nil
		case vr.IS:
			return []byte(fmt.Sprintf("%d", val)), nil
		}
		return nil, fmt.Errorf("int for VR %s not implemented", v)
	case []byte:
		return val, nil
	}

	return nil, fmt.Errorf("unsupported value type %T for VR %s", value, v)
}

type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	c.Count.Add(int64(n))
	return n, err
}
