// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package segment defines the fixed columnar schemas that the grid
// reconstruction path reads and writes: compressed segments on the way in,
// reconstructed data points on the way out.
package segment

import "github.com/MORE-EU/modelardb-go/date"

// UnivariateID uniquely identifies a single time-indexed scalar series. Its
// low bits encode the index of the column it belongs to within its table;
// see ColumnIndex.
type UnivariateID uint64

// ModelType selects which reconstruction routine a segment's model bytes
// should be interpreted with. See package model.
type ModelType uint8

// Timestamp is the type used for both segment bounds and reconstructed data
// point timestamps. It uses date.Time rather than a raw int64 so that the
// sort contract is expressed in terms of Before/After rather than raw
// integer comparison, matching how every other ordering in this module is
// defined.
type Timestamp = date.Time

// columnIndexMask selects the low 16 bits of a UnivariateID as the encoded
// column index. The catalog collaborator that owns the real table/column
// mapping is out of scope here; this fixed bit layout is the documented
// contract callers rely on in its absence.
const columnIndexMask = 0xffff

// ColumnIndex extracts the column index encoded in the low bits of id.
func ColumnIndex(id UnivariateID) uint16 {
	return uint16(id & columnIndexMask)
}

// CompressedSegment is a single logical row of the compressed-segment
// schema, prior to being packed into a CompressedBatch.
type CompressedSegment struct {
	UnivariateID UnivariateID
	ModelType    ModelType
	StartTime    Timestamp
	EndTime      Timestamp
	Timestamps   []byte // encoded timestamp sequence
	MinValue     float32
	MaxValue     float32
	Values       []byte // encoded value model parameters
	Residuals    []byte // encoded residual corrections, possibly empty
	Error        float32
}

// DataPoint is a single logical row of the reconstructed data-point schema.
type DataPoint struct {
	UnivariateID UnivariateID
	Timestamp    Timestamp
	Value        float32
}
