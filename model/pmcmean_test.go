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
	"testing"

	"github.com/MORE-EU/modelardb-go/date"
	"github.com/MORE-EU/modelardb-go/segment"
)

func TestPMCMeanReconstructWithResiduals(t *testing.T) {
	seg := segment.CompressedSegment{
		UnivariateID: 1,
		Values:       leFloat32Bytes(10),
		Timestamps: EncodeTimestamps([]segment.Timestamp{
			date.UnixMicro(1000), date.UnixMicro(2000), date.UnixMicro(3000),
		}),
		Residuals: EncodeResiduals([]float32{0, 0.5, -0.5}),
	}

	out := segment.NewDataPointBuilders(3)
	if err := (PMCMean{}).Reconstruct(seg, out); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	batch := out.Finish()

	want := []float32{10, 10.5, 9.5}
	for i, w := range want {
		if got := batch.Row(i).Value; got != w {
			t.Errorf("Row(%d).Value = %v, want %v", i, got, w)
		}
		if got := batch.Row(i).UnivariateID; got != 1 {
			t.Errorf("Row(%d).UnivariateID = %v, want 1", i, got)
		}
	}
}

func TestPMCMeanRejectsShortValues(t *testing.T) {
	seg := segment.CompressedSegment{Values: []byte{1, 2, 3}}
	out := segment.NewDataPointBuilders(1)
	if err := (PMCMean{}).Reconstruct(seg, out); err == nil {
		t.Error("expected error for undersized Values")
	}
}

func TestPMCMeanRejectsEmptyTimestamps(t *testing.T) {
	seg := segment.CompressedSegment{Values: leFloat32Bytes(1)}
	out := segment.NewDataPointBuilders(1)
	if err := (PMCMean{}).Reconstruct(seg, out); err == nil {
		t.Error("expected error for empty timestamp sequence")
	}
}
