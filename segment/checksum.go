// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package segment

import (
	"encoding/binary"
	"math"

	"github.com/dchest/siphash"
)

// Checksum computes a fast, content-addressed 128-bit hash of a single
// compressed segment row. It gives tests a stable fixture identity to
// compare against; it is not part of the on-disk format or the sort
// contract.
func Checksum(s CompressedSegment) (lo, hi uint64) {
	var hdr [33]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(s.UnivariateID))
	hdr[8] = byte(s.ModelType)
	binary.LittleEndian.PutUint64(hdr[9:17], uint64(s.StartTime.UnixMicro()))
	binary.LittleEndian.PutUint64(hdr[17:25], uint64(s.EndTime.UnixMicro()))
	binary.LittleEndian.PutUint32(hdr[25:29], math.Float32bits(s.MinValue))
	binary.LittleEndian.PutUint32(hdr[29:33], math.Float32bits(s.MaxValue))

	buf := make([]byte, 0, len(hdr)+len(s.Timestamps)+len(s.Values)+len(s.Residuals))
	buf = append(buf, hdr[:]...)
	buf = append(buf, s.Timestamps...)
	buf = append(buf, s.Values...)
	buf = append(buf, s.Residuals...)
	return siphash.Hash128(0, 0, buf)
}
