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

// Swing reconstructs a segment as a linear ramp: the i-th timestamp's value
// is intercept + slope*i, clamped into [MinValue, MaxValue] and corrected
// point-by-point by Residuals if present. Values encodes (slope, intercept)
// as two little-endian float32s. Swing is named after the "swinging door"
// family of linear segment-fitting algorithms ModelarDB uses for trend
// data.
type Swing struct{}

// Reconstruct implements Reconstructor.
func (Swing) Reconstruct(seg segment.CompressedSegment, out *segment.DataPointBuilders) error {
	if len(seg.Values) < 8 {
		return fmt.Errorf("model: Swing segment has %d value bytes, want 8", len(seg.Values))
	}
	slope := math.Float32frombits(leUint32At(seg.Values, 0))
	intercept := math.Float32frombits(leUint32At(seg.Values, 4))
	timestamps := DecodeTimestamps(seg.Timestamps)
	if len(timestamps) == 0 {
		return fmt.Errorf("model: Swing segment has no timestamps")
	}
	residuals := DecodeResiduals(seg.Residuals)
	for i, ts := range timestamps {
		v := intercept + slope*float32(i)
		if v < seg.MinValue {
			v = seg.MinValue
		} else if v > seg.MaxValue {
			v = seg.MaxValue
		}
		out.Append(seg.UnivariateID, ts, v+residualAt(residuals, i))
	}
	return nil
}
