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

//////////////////////////////////////////////////////////////////
// CPU-limited row operations. Parallelized across threads
//////////////////////////////////////////////////////////////////

// A row function. Processes the half-open row range [lower, upper).
// Must only write output rows inside that range.
type RowFunction func(lower, upper int)

// Batches per thread. More batches than threads balance uneven row costs
const batchesPerThread = 8

// Applies the row function to all rows [0,height), split into batchesPerThread*threads
// contiguous batches, with at most threads batches running concurrently.
// Threads beyond the number of rows are not used.
// Returns after all batches have completed. Batches never overlap.
func ParallelRows(height, threads int, rf RowFunction) {
	if height <= 0 {
		return
	}
	if threads > height {
		threads = height
	}
	if threads <= 1 {
		rf(0, height)
		return
	}

	numBatches := batchesPerThread * threads
	if numBatches > height {
		numBatches = height
	}
	batchSize := (height + numBatches - 1) / numBatches
	sem := make(chan bool, threads)
	for lower := 0; lower < height; lower += batchSize {
		upper := lower + batchSize
		if upper > height {
			upper = height
		}

		sem <- true
		go func(lower, upper int) {
			rf(lower, upper)
			<-sem
		}(lower, upper)
	}

	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}
