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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/MORE-EU/modelardb-go/compr"
	"github.com/MORE-EU/modelardb-go/date"
	"github.com/MORE-EU/modelardb-go/segment"
)

// fileMagic identifies the on-disk format written by encodeFile: a
// compact, self-describing columnar encoding (see DESIGN.md for why this
// module does not depend on Parquet or Arrow).
var fileMagic = [8]byte{'M', 'D', 'B', 'S', 'E', 'G', '1', '\n'}

// encodeFile serializes batch into the on-disk representation Buffer.Flush
// writes: a small header naming the sort keys and compression algorithm,
// followed by the compressed row payload.
func encodeFile(batch *segment.CompressedBatch, algorithm string) ([]byte, error) {
	payload := encodePayload(batch)

	c := compr.Compression(algorithm)
	if c == nil {
		return nil, fmt.Errorf("storage: unknown compression algorithm %q", algorithm)
	}
	compressed := c.Compress(payload, nil)

	var out bytes.Buffer
	out.Write(fileMagic[:])
	writeUvarint(&out, uint64(len(RequiredSortKeys)))
	for _, k := range RequiredSortKeys {
		writeUvarint(&out, uint64(k.ColumnIndex))
		out.WriteByte(boolByte(k.Ascending))
		out.WriteByte(boolByte(k.NullsFirst))
	}
	writeString(&out, c.Name())
	writeUvarint(&out, uint64(len(payload)))
	writeUvarint(&out, uint64(len(compressed)))
	out.Write(compressed)
	return out.Bytes(), nil
}

// encodePayload serializes batch's columns in schema order into an
// uncompressed byte stream.
func encodePayload(batch *segment.CompressedBatch) []byte {
	n := batch.NumRows()
	var out bytes.Buffer
	writeUvarint(&out, uint64(n))

	for i := 0; i < n; i++ {
		writeUint64(&out, uint64(batch.UnivariateID[i]))
	}
	for i := 0; i < n; i++ {
		out.WriteByte(byte(batch.ModelType[i]))
	}
	for i := 0; i < n; i++ {
		writeInt64(&out, batch.StartTime[i].UnixMicro())
	}
	for i := 0; i < n; i++ {
		writeInt64(&out, batch.EndTime[i].UnixMicro())
	}
	for i := 0; i < n; i++ {
		writeBytes(&out, batch.Timestamps[i])
	}
	for i := 0; i < n; i++ {
		writeFloat32(&out, batch.MinValue[i])
	}
	for i := 0; i < n; i++ {
		writeFloat32(&out, batch.MaxValue[i])
	}
	for i := 0; i < n; i++ {
		writeBytes(&out, batch.Values[i])
	}
	for i := 0; i < n; i++ {
		writeBytes(&out, batch.Residuals[i])
	}
	for i := 0; i < n; i++ {
		writeFloat32(&out, batch.Error[i])
	}
	return out.Bytes()
}

// decodeFile is the inverse of encodeFile. It is used by tests that verify
// a flushed file round-trips.
func decodeFile(buf []byte) (*segment.CompressedBatch, []SortKey, error) {
	r := bytes.NewReader(buf)
	var magic [8]byte
	if _, err := r.Read(magic[:]); err != nil {
		return nil, nil, fmt.Errorf("storage: reading magic: %w", err)
	}
	if magic != fileMagic {
		return nil, nil, fmt.Errorf("storage: bad file magic %x", magic)
	}
	nkeys, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]SortKey, nkeys)
	for i := range keys {
		col, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, nil, err
		}
		asc, err := r.ReadByte()
		if err != nil {
			return nil, nil, err
		}
		nf, err := r.ReadByte()
		if err != nil {
			return nil, nil, err
		}
		keys[i] = SortKey{ColumnIndex: int(col), Ascending: asc != 0, NullsFirst: nf != 0}
	}
	algorithm, err := readString(r)
	if err != nil {
		return nil, nil, err
	}
	payloadLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, nil, err
	}
	compressedLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, nil, err
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, nil, err
	}
	d := compr.Decompression(algorithm)
	if d == nil {
		return nil, nil, fmt.Errorf("storage: unknown compression algorithm %q", algorithm)
	}
	payload := make([]byte, payloadLen)
	if err := d.Decompress(compressed, payload); err != nil {
		return nil, nil, fmt.Errorf("storage: decompressing payload: %w", err)
	}
	batch, err := decodePayload(payload)
	if err != nil {
		return nil, nil, err
	}
	return batch, keys, nil
}

func decodePayload(buf []byte) (*segment.CompressedBatch, error) {
	r := bytes.NewReader(buf)
	n64, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	n := int(n64)

	batch := &segment.CompressedBatch{
		UnivariateID: make([]segment.UnivariateID, n),
		ModelType:    make([]segment.ModelType, n),
		StartTime:    make([]segment.Timestamp, n),
		EndTime:      make([]segment.Timestamp, n),
		Timestamps:   make([][]byte, n),
		MinValue:     make([]float32, n),
		MaxValue:     make([]float32, n),
		Values:       make([][]byte, n),
		Residuals:    make([][]byte, n),
		Error:        make([]float32, n),
	}

	for i := 0; i < n; i++ {
		v, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		batch.UnivariateID[i] = segment.UnivariateID(v)
	}
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		batch.ModelType[i] = segment.ModelType(b)
	}
	for i := 0; i < n; i++ {
		v, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		batch.StartTime[i] = date.UnixMicro(v)
	}
	for i := 0; i < n; i++ {
		v, err := readInt64(r)
		if err != nil {
			return nil, err
		}
		batch.EndTime[i] = date.UnixMicro(v)
	}
	for i := 0; i < n; i++ {
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		batch.Timestamps[i] = b
	}
	for i := 0; i < n; i++ {
		v, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		batch.MinValue[i] = v
	}
	for i := 0; i < n; i++ {
		v, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		batch.MaxValue[i] = v
	}
	for i := 0; i < n; i++ {
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		batch.Values[i] = b
	}
	for i := 0; i < n; i++ {
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		batch.Residuals[i] = b
	}
	for i := 0; i < n; i++ {
		v, err := readFloat32(r)
		if err != nil {
			return nil, err
		}
		batch.Error[i] = v
	}
	return batch, nil
}
