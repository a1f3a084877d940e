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

package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MORE-EU/modelardb-go/date"
	"github.com/MORE-EU/modelardb-go/segment"
)

func makeBatch(ids []uint64, starts []int64) segment.CompressedBatch {
	var b segment.CompressedBatch
	for i := range ids {
		b.AppendRow(segment.CompressedSegment{
			UnivariateID: segment.UnivariateID(ids[i]),
			StartTime:    date.UnixMicro(starts[i]),
			EndTime:      date.UnixMicro(starts[i] + 1),
			Timestamps:   []byte{1, 2, 3, 4},
			Values:       []byte{5, 6, 7, 8},
		})
	}
	return b
}

func TestBufferFlushEmptyReturnsError(t *testing.T) {
	b := NewBuffer()
	_, err := b.Flush(context.Background(), t.TempDir(), "part", "zstd")
	if err != ErrEmptyBuffer {
		t.Fatalf("Flush on empty buffer: got %v, want ErrEmptyBuffer", err)
	}
}

func TestBufferSizeInBytesEqualsSumOfAppends(t *testing.T) {
	b := NewBuffer()
	batch1 := makeBatch([]uint64{1}, []int64{0})
	batch2 := makeBatch([]uint64{2, 3}, []int64{10, 20})

	size1 := b.Append(batch1)
	size2 := b.Append(batch2)

	want1 := batch1.MemorySize()
	want2 := batch2.MemorySize()
	if size1 != want1 {
		t.Errorf("bytes added by first Append = %d, want %d", size1, want1)
	}
	if size2 != want2 {
		t.Errorf("bytes added by second Append = %d, want %d", size2, want2)
	}
	if b.SizeInBytes() != want1+want2 {
		t.Errorf("SizeInBytes() = %d, want sum of Append results %d", b.SizeInBytes(), want1+want2)
	}
}

func TestBufferFlushClearsBufferAndRoundTrips(t *testing.T) {
	b := NewBuffer()
	b.Append(makeBatch([]uint64{1, 2}, []int64{0, 10}))
	b.Append(makeBatch([]uint64{3}, []int64{20}))

	root := t.TempDir()
	desc, err := b.Flush(context.Background(), root, "part0", "zstd")
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if b.NumRows() != 0 || b.SizeInBytes() != 0 {
		t.Errorf("buffer not cleared after Flush: NumRows=%d SizeInBytes=%d", b.NumRows(), b.SizeInBytes())
	}
	if desc.MinUnivariateID != 1 || desc.MaxUnivariateID != 3 {
		t.Errorf("descriptor univariate id range = [%d,%d], want [1,3]", desc.MinUnivariateID, desc.MaxUnivariateID)
	}

	data, err := os.ReadFile(filepath.Join(root, desc.Location))
	if err != nil {
		t.Fatalf("reading flushed file: %v", err)
	}
	decoded, keys, err := decodeFile(data)
	if err != nil {
		t.Fatalf("decodeFile: %v", err)
	}
	if decoded.NumRows() != 3 {
		t.Fatalf("decoded NumRows() = %d, want 3", decoded.NumRows())
	}
	if len(keys) != len(RequiredSortKeys) {
		t.Fatalf("decoded %d sort keys, want %d", len(keys), len(RequiredSortKeys))
	}
}
