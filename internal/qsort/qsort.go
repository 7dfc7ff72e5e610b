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

package qsort

// Sort an array of uint8 in ascending order.
func QSortUint8(a []uint8) {
	if len(a) > 1 {
		index := QPartitionUint8(a)
		QSortUint8(a[:index+1])
		QSortUint8(a[index+1:])
	}
}

// Partitions an array of uint8 with the middle pivot element, and returns the pivot index.
// Values less than the pivot are moved left of the pivot, those greater are moved right.
func QPartitionUint8(a []uint8) int {
	left, right := 0, len(a)-1
	mid := (left + right) >> 1
	pivot := a[mid]
	l := left - 1
	r := right + 1
	for {
		for {
			l++
			if a[l] >= pivot {
				break
			}
		}
		for {
			r--
			if a[r] <= pivot {
				break
			}
		}
		if l >= r {
			return r
		}
		a[l], a[r] = a[r], a[l]
	}
}

// Select kth lowest element from an array of uint8, counting from k=1. Partially reorders the array.
func QSelectUint8(a []uint8, k int) uint8 {
	left, right := 0, len(a)-1
	for left < right {
		index := left + QPartitionUint8(a[left:right+1])

		offset := index - left + 1
		if k <= offset {
			right = index
		} else {
			left = index + 1
			k = k - offset
		}
	}
	return a[left]
}

// Median of an array of uint8. Partially reorders the array.
// For odd lengths m this is the middle element a[m/2] of the sorted array.
// For even lengths it is the truncated mean of the two central elements a[m/2-1] and a[m/2].
// Returns 0 for an empty array.
func MedianUint8(a []uint8) uint8 {
	m := len(a)
	if m == 0 {
		return 0
	}
	if m&1 != 0 {
		return QSelectUint8(a, m/2+1)
	}
	lo := QSelectUint8(a, m/2)
	hi := QSelectUint8(a, m/2+1)
	return uint8((uint16(lo) + uint16(hi)) >> 1)
}
