// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	MagicColor = "P6" // 3-channel binary raster
	MagicGray  = "P5" // single-channel binary raster
	MaxValue   = 255  // the only supported channel depth
)

const bufLen int = 16 * 1024 // input buffer length for reading from file

// Reads a P6 image from the file with the given name. Errors name the file.
func ReadFile(fileName string) (*Image, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open file '%s': %v", ErrIO, fileName, err)
	}
	defer f.Close()

	img, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("error loading '%s': %w", fileName, err)
	}
	img.FileName = fileName
	return img, nil
}

// Reads a P6 image: magic tag, whitespace separated ASCII width, height and maxval,
// a single whitespace byte, then width*height*3 bytes of RGB data.
// Lines starting with '#' within the header are skipped as comments.
func Read(r io.Reader) (*Image, error) {
	br := bufio.NewReaderSize(r, bufLen)

	magic := make([]byte, 2)
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: unable to read format tag: %v", ErrIO, err)
	}
	switch string(magic) {
	case MagicColor:
	case MagicGray:
		return nil, fmt.Errorf("%w: invalid image format '%s', single-channel images are not supported (must be '%s')", ErrIO, magic, MagicColor)
	default:
		return nil, fmt.Errorf("%w: invalid image format %q (must be '%s')", ErrIO, magic, MagicColor)
	}

	width, _, err := readHeaderInt(br, "width")
	if err != nil {
		return nil, err
	}
	height, _, err := readHeaderInt(br, "height")
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid image size %dx%d", ErrIO, width, height)
	}
	maxVal, term, err := readHeaderInt(br, "rgb component")
	if err != nil {
		return nil, err
	}
	// a CRLF line end after maxval counts as the single separator
	if term == '\r' {
		if next, err := br.Peek(1); err == nil && next[0] == '\n' {
			br.ReadByte()
		}
	}
	if maxVal != MaxValue {
		return nil, fmt.Errorf("%w: does not have 8-bits components (maximum value %d, want %d)", ErrIO, maxVal, MaxValue)
	}

	img, err := NewImage(width, height)
	if err != nil {
		return nil, err
	}
	if err := img.readData(br); err != nil {
		return nil, err
	}
	return img, nil
}

// Reads the next unsigned decimal header token, skipping leading whitespace and comment lines.
// Consumes exactly one whitespace byte after the token, and returns it.
func readHeaderInt(br *bufio.Reader, name string) (int, byte, error) {
	c, err := skipWhitespaceAndComments(br)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid %s: %v", ErrIO, name, err)
	}
	if c < '0' || c > '9' {
		return 0, 0, fmt.Errorf("%w: invalid %s: unexpected character %q", ErrIO, name, c)
	}

	val := 0
	for {
		val = val*10 + int(c-'0')
		if val > math.MaxInt32 {
			return 0, 0, fmt.Errorf("%w: invalid %s: value too large", ErrIO, name)
		}
		c, err = br.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid %s: %v", ErrIO, name, err)
		}
		if c < '0' || c > '9' {
			break
		}
	}
	if !isWhitespace(c) {
		return 0, 0, fmt.Errorf("%w: invalid %s: unexpected character %q", ErrIO, name, c)
	}
	return val, c, nil
}

// Returns the first byte that is neither whitespace nor part of a comment
func skipWhitespaceAndComments(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if c == '#' {
			if _, err := br.ReadBytes('\n'); err != nil {
				return 0, err
			}
			continue
		}
		if !isWhitespace(c) {
			return c, nil
		}
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// Batched read of the RGB payload into the preallocated pixel buffer
func (img *Image) readData(r io.Reader) error {
	buf := make([]byte, bufLen-bufLen%bytesPerPixel)

	dataIndex := 0
	for dataIndex < len(img.Data) {
		bytesToRead := (len(img.Data) - dataIndex) * bytesPerPixel
		if bytesToRead > len(buf) {
			bytesToRead = len(buf)
		}
		bytesRead, err := io.ReadFull(r, buf[:bytesToRead])
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				got := dataIndex + bytesRead/bytesPerPixel
				return fmt.Errorf("%w: short read, got %d of %d pixels", ErrIO, got, len(img.Data))
			}
			return fmt.Errorf("%w: %v", ErrIO, err)
		}

		for i := 0; i < bytesRead; i += bytesPerPixel {
			img.Data[dataIndex] = Pixel{R: buf[i], G: buf[i+1], B: buf[i+2]}
			dataIndex++
		}
	}
	return nil
}
