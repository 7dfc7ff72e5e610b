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
	"fmt"
	"io"
	"os"
)

// Writes a P6 image to the file with the given name
func (img *Image) WriteFile(fileName string) error {
	return writeFile(fileName, img.Write)
}

// Writes the first channel of an image as a single-channel P5 file with the given name.
// Intended for the output of the grayscale kernel, where all channels are equal
func (img *Image) WriteGrayFile(fileName string) error {
	return writeFile(fileName, img.WriteGray)
}

func writeFile(fileName string, write func(w io.Writer) error) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("%w: unable to open file '%s': %v", ErrIO, fileName, err)
	}
	defer f.Close()

	writer := bufio.NewWriterSize(f, bufLen)
	if err := write(writer); err != nil {
		return fmt.Errorf("error writing '%s': %w", fileName, err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("%w: error writing '%s': %v", ErrIO, fileName, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: error closing '%s': %v", ErrIO, fileName, err)
	}
	return nil
}

// Writes a P6 image: header with format tag, size and channel depth, then the RGB payload
func (img *Image) Write(w io.Writer) error {
	if err := writeHeader(w, MagicColor, img.Width, img.Height); err != nil {
		return err
	}

	buf := make([]byte, bufLen-bufLen%bytesPerPixel)
	for lower := 0; lower < len(img.Data); lower += len(buf) / bytesPerPixel {
		upper := lower + len(buf)/bytesPerPixel
		if upper > len(img.Data) {
			upper = len(img.Data)
		}
		n := 0
		for _, p := range img.Data[lower:upper] {
			buf[n], buf[n+1], buf[n+2] = p.R, p.G, p.B
			n += bytesPerPixel
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	return nil
}

// Writes the red channel of an image as a single-channel P5 image
func (img *Image) WriteGray(w io.Writer) error {
	if err := writeHeader(w, MagicGray, img.Width, img.Height); err != nil {
		return err
	}

	buf := make([]byte, bufLen)
	for lower := 0; lower < len(img.Data); lower += len(buf) {
		upper := lower + len(buf)
		if upper > len(img.Data) {
			upper = len(img.Data)
		}
		for i, p := range img.Data[lower:upper] {
			buf[i] = p.R
		}
		if _, err := w.Write(buf[:upper-lower]); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	return nil
}

func writeHeader(w io.Writer, magic string, width, height int) error {
	if _, err := fmt.Fprintf(w, "%s\n%d %d\n%d\n", magic, width, height, MaxValue); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
