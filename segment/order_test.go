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

import (
	"testing"

	"github.com/MORE-EU/modelardb-go/date"
)

func TestIsSegmentOrdered(t *testing.T) {
	var ordered CompressedBatch
	ordered.AppendRow(seg(1, 100))
	ordered.AppendRow(seg(1, 200))
	ordered.AppendRow(seg(2, 50))
	if !IsSegmentOrdered(&ordered) {
		t.Error("expected ordered batch to report ordered")
	}

	var unordered CompressedBatch
	unordered.AppendRow(seg(2, 50))
	unordered.AppendRow(seg(1, 100))
	if IsSegmentOrdered(&unordered) {
		t.Error("expected unordered batch to report unordered")
	}
}

func TestIsPointOrdered(t *testing.T) {
	ordered := DataPointBatch{
		UnivariateID: []UnivariateID{1, 1, 2},
		Timestamp:    []Timestamp{date.UnixMicro(1), date.UnixMicro(2), date.UnixMicro(1)},
	}
	if !IsPointOrdered(ordered) {
		t.Error("expected ordered points to report ordered")
	}

	unordered := DataPointBatch{
		UnivariateID: []UnivariateID{1, 1, 2},
		Timestamp:    []Timestamp{date.UnixMicro(2), date.UnixMicro(1), date.UnixMicro(1)},
	}
	if IsPointOrdered(unordered) {
		t.Error("expected unordered points to report unordered")
	}
}

func TestColumnIndex(t *testing.T) {
	id := UnivariateID(0x1_0000_0042)
	if got := ColumnIndex(id); got != 0x42 {
		t.Errorf("ColumnIndex(%x) = %x, want 0x42", id, got)
	}
}
