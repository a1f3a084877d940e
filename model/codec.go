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

package model

import (
	"encoding/binary"
	"math"

	"github.com/MORE-EU/modelardb-go/date"
	"github.com/MORE-EU/modelardb-go/segment"
)

// EncodeTimestamps packs an explicit timestamp sequence into the opaque
// representation PMCMean and Swing expect in CompressedSegment.Timestamps:
// each timestamp as an 8-byte little-endian Unix-microsecond value. Real
// compressed segments would use a denser delta/run-length encoding; this
// reference codec favors being easy to construct in tests over density,
// since the encoding scheme itself is an implementation detail of whichever
// model produced it.
func EncodeTimestamps(ts []segment.Timestamp) []byte {
	buf := make([]byte, 8*len(ts))
	for i, t := range ts {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(t.UnixMicro()))
	}
	return buf
}

// DecodeTimestamps is the inverse of EncodeTimestamps.
func DecodeTimestamps(buf []byte) []segment.Timestamp {
	n := len(buf) / 8
	out := make([]segment.Timestamp, n)
	for i := 0; i < n; i++ {
		us := int64(binary.LittleEndian.Uint64(buf[i*8:]))
		out[i] = date.UnixMicro(us)
	}
	return out
}

// EncodeResiduals packs per-point residual corrections as 4-byte
// little-endian float32 values. An empty slice encodes to an empty byte
// slice, meaning "no residual corrections".
func EncodeResiduals(residuals []float32) []byte {
	if len(residuals) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(residuals))
	for i, r := range residuals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(r))
	}
	return buf
}

// DecodeResiduals is the inverse of EncodeResiduals. It returns nil for an
// empty input.
func DecodeResiduals(buf []byte) []float32 {
	n := len(buf) / 4
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

// residualAt returns the i-th residual correction, or 0 if residuals is
// empty or too short.
func residualAt(residuals []float32, i int) float32 {
	if i < len(residuals) {
		return residuals[i]
	}
	return 0
}

// leUint32 reads the first 4 bytes of buf as a little-endian float32 bit
// pattern.
func leUint32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// leUint32At reads 4 bytes starting at offset off as a little-endian
// float32 bit pattern.
func leUint32At(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}
