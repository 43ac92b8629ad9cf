// Package raster loads source images as 8-bit grayscale sample grids
package raster

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"

	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// MaxDimension is the largest row or column count a US attribute can carry
const MaxDimension = 0xFFFF

// ErrDecode wraps every failure to turn a file into a Gray image
var ErrDecode = errors.New("image decode error")

// Gray is an 8-bit single channel image in row-major order
type Gray struct {
	Rows    int
	Columns int
	Pix     []byte
}

// At returns the sample at row r, column c
func (g *Gray) At(r, c int) byte {
	return g.Pix[r*g.Columns+c]
}

// Image wraps the samples as an image.Gray without copying
func (g *Gray) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Columns,
		Rect:   image.Rect(0, 0, g.Columns, g.Rows),
	}
}

// Load decodes the image at path and reduces it to grayscale
func Load(path string) (*Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

// Decode reads any registered image format and reduces it to grayscale
func Decode(r io.Reader) (*Gray, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	g, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}
	return g, nil
}

// FromImage converts an image to grayscale using ITU-R 601 luma weights
func FromImage(img image.Image) (*Gray, error) {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	if rows < 1 || cols < 1 || rows > MaxDimension || cols > MaxDimension {
		return nil, fmt.Errorf("dimensions %dx%d out of range", cols, rows)
	}

	var gray *image.Gray
	if g, ok := img.(*image.Gray); ok {
		gray = g
	} else {
		gray = image.NewGray(image.Rect(0, 0, cols, rows))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	}

	pix := make([]byte, rows*cols)
	for y := 0; y < rows; y++ {
		start := gray.PixOffset(gray.Rect.Min.X, gray.Rect.Min.Y+y)
		copy(pix[y*cols:(y+1)*cols], gray.Pix[start:start+cols])
	}
	return &Gray{Rows: rows, Columns: cols, Pix: pix}, nil
}
