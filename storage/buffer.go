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

// Package storage accumulates compressed segments in memory and flushes
// them to disk as sorted, checksummed files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/MORE-EU/modelardb-go/segment"

	"github.com/google/uuid"
)

// Errorf is called with a formatted message whenever Buffer logs a
// diagnostic. The default implementation discards the message; a host
// process overrides it to route messages into its own log sink, the same
// injectable-hook idiom grid.Errorf uses for grid stream diagnostics.
var Errorf = func(string, ...any) {}

// ErrEmptyBuffer is returned by Flush when the buffer holds no segments.
// Callers are expected to check SizeInBytes or NumRows before flushing;
// this is reported as an ordinary error rather than a panic so a caller
// that races a flush against a concurrent drain sees a recoverable result
// (see DESIGN.md's open-question notes).
var ErrEmptyBuffer = errors.New("storage: cannot flush an empty buffer")

// Buffer accumulates CompressedBatch values in memory and, on demand,
// flushes all of them to a single sorted file.
//
// Buffer is not safe for concurrent use; callers that share a Buffer across
// goroutines must serialize Append and Flush themselves.
type Buffer struct {
	batches   []segment.CompressedBatch
	sizeBytes int64
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds batch to the buffer and returns the number of bytes it added
// to the buffer's in-memory footprint.
func (b *Buffer) Append(batch segment.CompressedBatch) int64 {
	b.batches = append(b.batches, batch)
	added := batch.MemorySize()
	b.sizeBytes += added
	return added
}

// SizeInBytes returns the buffer's current in-memory footprint. It is an
// advisory quantity consulted by a flush policy; Buffer never flushes
// itself.
func (b *Buffer) SizeInBytes() int64 {
	return b.sizeBytes
}

// NumRows returns the total number of segments currently buffered.
func (b *Buffer) NumRows() int {
	n := 0
	for i := range b.batches {
		n += b.batches[i].NumRows()
	}
	return n
}

// Flush concatenates every buffered batch, writes it as a single file under
// localRoot/relativeFolder, and clears the buffer. It returns ErrEmptyBuffer
// if the buffer held no segments.
//
// The returned FileDescriptor's Location is relative to localRoot.
func (b *Buffer) Flush(ctx context.Context, localRoot, relativeFolder, compressionAlgorithm string) (*FileDescriptor, error) {
	if b.NumRows() == 0 {
		return nil, ErrEmptyBuffer
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := segment.ConcatCompressed(b.batches)

	dir := filepath.Join(localRoot, relativeFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating folder %s: %w", dir, err)
	}

	name := uuid.New().String() + ".cseg"
	relLocation := filepath.Join(relativeFolder, name)
	absPath := filepath.Join(localRoot, relLocation)

	encoded, err := encodeFile(&merged, compressionAlgorithm)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(absPath, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("storage: writing file %s: %w", absPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", absPath, err)
	}

	checksum := blake2b.Sum256(encoded)

	desc := &FileDescriptor{
		Location:        relLocation,
		LastModified:    info.ModTime(),
		Size:            info.Size(),
		ContentChecksum: checksum,
		SortKeys:        RequiredSortKeys,
	}
	desc.MinUnivariateID, desc.MaxUnivariateID = minMaxUnivariateID(merged.UnivariateID)
	desc.MinStartTime, desc.MaxStartTime = minMaxTimestamp(merged.StartTime)

	Errorf("storage: flushed %d segments (%d bytes) to %s", merged.NumRows(), info.Size(), relLocation)

	b.batches = nil
	b.sizeBytes = 0
	return desc, nil
}

func minMaxUnivariateID(ids []segment.UnivariateID) (min, max segment.UnivariateID) {
	min, max = ids[0], ids[0]
	for _, id := range ids[1:] {
		if id < min {
			min = id
		}
		if id > max {
			max = id
		}
	}
	return min, max
}

func minMaxTimestamp(ts []segment.Timestamp) (min, max segment.Timestamp) {
	min, max = ts[0], ts[0]
	for _, t := range ts[1:] {
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return min, max
}
