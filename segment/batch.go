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

package segment

import "fmt"

// CompressedBatch is the columnar, struct-of-slices form of a batch of
// CompressedSegment rows. All slices have equal length; that length is
// NumRows.
//
// CompressedBatch is the unit exchanged between a segment source and the
// grid stream, and the unit a compressed-data buffer accumulates.
type CompressedBatch struct {
	UnivariateID []UnivariateID
	ModelType    []ModelType
	StartTime    []Timestamp
	EndTime      []Timestamp
	Timestamps   [][]byte
	MinValue     []float32
	MaxValue     []float32
	Values       [][]byte
	Residuals    [][]byte
	Error        []float32
}

// NumRows returns the number of segments in b.
func (b *CompressedBatch) NumRows() int {
	return len(b.UnivariateID)
}

// Row returns the i-th segment as a CompressedSegment value. It does not
// copy the byte-slice fields.
func (b *CompressedBatch) Row(i int) CompressedSegment {
	return CompressedSegment{
		UnivariateID: b.UnivariateID[i],
		ModelType:    b.ModelType[i],
		StartTime:    b.StartTime[i],
		EndTime:      b.EndTime[i],
		Timestamps:   b.Timestamps[i],
		MinValue:     b.MinValue[i],
		MaxValue:     b.MaxValue[i],
		Values:       b.Values[i],
		Residuals:    b.Residuals[i],
		Error:        b.Error[i],
	}
}

// AppendRow appends one CompressedSegment to b.
func (b *CompressedBatch) AppendRow(s CompressedSegment) {
	b.UnivariateID = append(b.UnivariateID, s.UnivariateID)
	b.ModelType = append(b.ModelType, s.ModelType)
	b.StartTime = append(b.StartTime, s.StartTime)
	b.EndTime = append(b.EndTime, s.EndTime)
	b.Timestamps = append(b.Timestamps, s.Timestamps)
	b.MinValue = append(b.MinValue, s.MinValue)
	b.MaxValue = append(b.MaxValue, s.MaxValue)
	b.Values = append(b.Values, s.Values)
	b.Residuals = append(b.Residuals, s.Residuals)
	b.Error = append(b.Error, s.Error)
}

// MemorySize recursively reports the in-memory footprint of b, including
// the backing arrays of every nested byte slice. It is a policy input for
// flush scheduling, not a correctness input.
func (b *CompressedBatch) MemorySize() int64 {
	n := b.NumRows()
	// fixed-width columns: length * element size
	size := int64(n) * (8 /* UnivariateID */ + 1 /* ModelType */ +
		8 /* StartTime date.Time */ + 8 /* EndTime */ +
		4 /* MinValue */ + 4 /* MaxValue */ + 4 /* Error */)
	// slice headers for the three byte-slice columns
	size += int64(n) * 3 * 24
	for _, t := range b.Timestamps {
		size += int64(len(t))
	}
	for _, v := range b.Values {
		size += int64(len(v))
	}
	for _, r := range b.Residuals {
		size += int64(len(r))
	}
	return size
}

// ConcatCompressed concatenates batches into a single CompressedBatch,
// preserving row order. It is used by storage.Buffer.Flush to combine all
// accumulated batches before they are written to disk.
func ConcatCompressed(batches []CompressedBatch) CompressedBatch {
	var total int
	for i := range batches {
		total += batches[i].NumRows()
	}
	out := CompressedBatch{
		UnivariateID: make([]UnivariateID, 0, total),
		ModelType:    make([]ModelType, 0, total),
		StartTime:    make([]Timestamp, 0, total),
		EndTime:      make([]Timestamp, 0, total),
		Timestamps:   make([][]byte, 0, total),
		MinValue:     make([]float32, 0, total),
		MaxValue:     make([]float32, 0, total),
		Values:       make([][]byte, 0, total),
		Residuals:    make([][]byte, 0, total),
		Error:        make([]float32, 0, total),
	}
	for i := range batches {
		b := &batches[i]
		out.UnivariateID = append(out.UnivariateID, b.UnivariateID...)
		out.ModelType = append(out.ModelType, b.ModelType...)
		out.StartTime = append(out.StartTime, b.StartTime...)
		out.EndTime = append(out.EndTime, b.EndTime...)
		out.Timestamps = append(out.Timestamps, b.Timestamps...)
		out.MinValue = append(out.MinValue, b.MinValue...)
		out.MaxValue = append(out.MaxValue, b.MaxValue...)
		out.Values = append(out.Values, b.Values...)
		out.Residuals = append(out.Residuals, b.Residuals...)
		out.Error = append(out.Error, b.Error...)
	}
	return out
}

// DataPointBatch is the columnar, struct-of-slices form of a batch of
// DataPoint rows: the output schema of the grid reconstruction path.
type DataPointBatch struct {
	UnivariateID []UnivariateID
	Timestamp    []Timestamp
	Value        []float32
}

// NumRows returns the number of data points in b.
func (b DataPointBatch) NumRows() int {
	return len(b.UnivariateID)
}

// Slice returns the rows [offset, offset+length) of b without copying the
// backing arrays.
func (b DataPointBatch) Slice(offset, length int) DataPointBatch {
	return DataPointBatch{
		UnivariateID: b.UnivariateID[offset : offset+length],
		Timestamp:    b.Timestamp[offset : offset+length],
		Value:        b.Value[offset : offset+length],
	}
}

// Row returns the i-th data point.
func (b DataPointBatch) Row(i int) DataPoint {
	return DataPoint{
		UnivariateID: b.UnivariateID[i],
		Timestamp:    b.Timestamp[i],
		Value:        b.Value[i],
	}
}

// Filter returns the subset of rows in b for which keep[i] is true. len(keep)
// must equal b.NumRows().
func (b DataPointBatch) Filter(keep []bool) DataPointBatch {
	if len(keep) != b.NumRows() {
		panic(fmt.Sprintf("segment: Filter mask length %d does not match batch of %d rows", len(keep), b.NumRows()))
	}
	out := DataPointBatch{
		UnivariateID: make([]UnivariateID, 0, len(keep)),
		Timestamp:    make([]Timestamp, 0, len(keep)),
		Value:        make([]float32, 0, len(keep)),
	}
	for i, ok := range keep {
		if ok {
			out.UnivariateID = append(out.UnivariateID, b.UnivariateID[i])
			out.Timestamp = append(out.Timestamp, b.Timestamp[i])
			out.Value = append(out.Value, b.Value[i])
		}
	}
	return out
}

// DataPointBuilders accumulates data points across a prefix copied from a
// leftover batch and a suffix produced by a reconstruction kernel, before
// being finalized into a DataPointBatch.
type DataPointBuilders struct {
	UnivariateID []UnivariateID
	Timestamp    []Timestamp
	Value        []float32
}

// NewDataPointBuilders allocates builders with capacity hint rows. The hint
// is an under-estimate whenever segments expand to more than one point
// each; callers must allow growth beyond it.
func NewDataPointBuilders(capacityHint int) *DataPointBuilders {
	return &DataPointBuilders{
		UnivariateID: make([]UnivariateID, 0, capacityHint),
		Timestamp:    make([]Timestamp, 0, capacityHint),
		Value:        make([]float32, 0, capacityHint),
	}
}

// AppendLeftover copies the rows [offset, NumRows) of leftover into the
// builders. This must happen before any reconstructed rows are appended so
// that the point-order invariant is preserved.
func (d *DataPointBuilders) AppendLeftover(leftover DataPointBatch, offset int) {
	d.UnivariateID = append(d.UnivariateID, leftover.UnivariateID[offset:]...)
	d.Timestamp = append(d.Timestamp, leftover.Timestamp[offset:]...)
	d.Value = append(d.Value, leftover.Value[offset:]...)
}

// Append appends a single reconstructed data point. Reconstruction kernels
// call this once per output point.
func (d *DataPointBuilders) Append(id UnivariateID, ts Timestamp, value float32) {
	d.UnivariateID = append(d.UnivariateID, id)
	d.Timestamp = append(d.Timestamp, ts)
	d.Value = append(d.Value, value)
}

// Finish finalizes the builders into a DataPointBatch.
func (d *DataPointBuilders) Finish() DataPointBatch {
	return DataPointBatch{
		UnivariateID: d.UnivariateID,
		Timestamp:    d.Timestamp,
		Value:        d.Value,
	}
}
