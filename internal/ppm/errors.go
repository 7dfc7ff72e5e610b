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

import "errors"

// Error classes. Every error returned by this module wraps exactly one of these,
// so callers can tell them apart with errors.Is.
var (
	// Invalid or missing kernel parameters, e.g. a window size below 1
	ErrConfiguration = errors.New("configuration error")

	// File open, read or write failure, malformed header, wrong magic tag,
	// unsupported channel depth or truncated pixel payload
	ErrIO = errors.New("I/O error")

	// A pixel buffer of the requested size cannot be allocated
	ErrAllocation = errors.New("allocation error")
)
