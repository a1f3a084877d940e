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

package model

import (
	"fmt"
	"math"

	"github.com/MORE-EU/modelardb-go/segment"
)

// PMCMean reconstructs a segment as a constant value: every timestamp in
// the segment's encoded sequence is emitted with the single mean value
// stored in Values, corrected point-by-point by Residuals if present. This
// is "Poor Man's Compression - Mean," the simplest model in the ModelarDB
// family and the canonical example of a segment that legitimately expands
// to many points from a few bytes of model parameters.
type PMCMean struct{}

// Reconstruct implements Reconstructor.
func (PMCMean) Reconstruct(seg segment.CompressedSegment, out *segment.DataPointBuilders) error {
	if len(seg.Values) < 4 {
		return fmt.Errorf("model: PMCMean segment has %d value bytes, want 4", len(seg.Values))
	}
	mean := math.Float32frombits(leUint32(seg.Values))
	timestamps := DecodeTimestamps(seg.Timestamps)
	if len(timestamps) == 0 {
		return fmt.Errorf("model: PMCMean segment has no timestamps")
	}
	residuals := DecodeResiduals(seg.Residuals)
	for i, ts := range timestamps {
		out.Append(seg.UnivariateID, ts, mean+residualAt(residuals, i))
	}
	return nil
}
