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

package grid

import (
	"context"
	"io"
	"testing"

	"github.com/MORE-EU/modelardb-go/date"
	"github.com/MORE-EU/modelardb-go/execplan"
	"github.com/MORE-EU/modelardb-go/model"
	"github.com/MORE-EU/modelardb-go/segment"
)

// fakeSegmentSource replays a fixed partitioning of CompressedBatch values,
// one per Next call, then returns io.EOF.
type fakeSegmentSource struct {
	partitions [][]segment.CompressedBatch
}

func (f *fakeSegmentSource) Schema() []string { return []string{"univariate_id", "start_time"} }

func (f *fakeSegmentSource) Execute(ctx context.Context, partition int) (SegmentStream, error) {
	return &fakeSegmentStream{batches: f.partitions[partition]}, nil
}

type fakeSegmentStream struct {
	batches []segment.CompressedBatch
	pos     int
}

func (s *fakeSegmentStream) Next(ctx context.Context) (segment.CompressedBatch, error) {
	if s.pos >= len(s.batches) {
		return segment.CompressedBatch{}, io.EOF
	}
	b := s.batches[s.pos]
	s.pos++
	return b, nil
}

func pmcSegment(id uint64, start int64, numPoints int, mean float32) segment.CompressedSegment {
	ts := make([]segment.Timestamp, numPoints)
	for i := range ts {
		ts[i] = date.UnixMicro(start + int64(i))
	}
	return segment.CompressedSegment{
		UnivariateID: segment.UnivariateID(id),
		ModelType:    model.TypePMCMean,
		StartTime:    date.UnixMicro(start),
		EndTime:      date.UnixMicro(start + int64(numPoints) - 1),
		Values:       model.EncodeResiduals([]float32{mean}),
		Timestamps:   model.EncodeTimestamps(ts),
	}
}

func drain(t *testing.T, stream execplan.Stream) segment.DataPointBatch {
	t.Helper()
	var out segment.DataPointBatch
	for {
		b, err := stream.Next(context.Background())
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out.UnivariateID = append(out.UnivariateID, b.UnivariateID...)
		out.Timestamp = append(out.Timestamp, b.Timestamp...)
		out.Value = append(out.Value, b.Value...)
	}
}

func TestGridExecReconstructsAllPoints(t *testing.T) {
	var batch segment.CompressedBatch
	batch.AppendRow(pmcSegment(1, 0, 3, 10))
	batch.AppendRow(pmcSegment(1, 10, 2, 20))
	batch.AppendRow(pmcSegment(2, 0, 1, 30))

	source := &fakeSegmentSource{partitions: [][]segment.CompressedBatch{{batch}}}
	exec := NewGridExec(source, model.DefaultRegistry(), nil, 1024)

	stream, err := exec.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := drain(t, stream)

	if n := out.NumRows(); n != 6 {
		t.Fatalf("NumRows() = %d, want 6", n)
	}
	if !segment.IsPointOrdered(out) {
		t.Error("output violates point ordering")
	}
}

// TestGridStreamLeftoverIndependentOfPartitioning checks that splitting the
// same segments across a different number of upstream batches produces the
// same reconstructed points, proving the leftover buffer correctly carries
// state across Next calls regardless of where batch boundaries fall.
func TestGridStreamLeftoverIndependentOfPartitioning(t *testing.T) {
	segs := []segment.CompressedSegment{
		pmcSegment(1, 0, 2, 1),
		pmcSegment(1, 10, 2, 2),
		pmcSegment(1, 20, 2, 3),
		pmcSegment(2, 0, 2, 4),
	}

	run := func(batchesPerPartition [][]int) segment.DataPointBatch {
		var partitions [][]segment.CompressedBatch
		for _, groups := range batchesPerPartition {
			var batches []segment.CompressedBatch
			idx := 0
			for _, count := range groups {
				var b segment.CompressedBatch
				for i := 0; i < count; i++ {
					b.AppendRow(segs[idx])
					idx++
				}
				batches = append(batches, b)
			}
			partitions = append(partitions, batches)
		}
		source := &fakeSegmentSource{partitions: partitions}
		exec := NewGridExec(source, model.DefaultRegistry(), nil, 3)
		stream, err := exec.Execute(context.Background(), 0)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		return drain(t, stream)
	}

	// all four segments in one upstream batch
	whole := run([][]int{{4}})
	// same four segments split 1/1/1/1 across four upstream batches
	split := run([][]int{{1, 1, 1, 1}})

	if whole.NumRows() != split.NumRows() {
		t.Fatalf("row count differs by partitioning: %d vs %d", whole.NumRows(), split.NumRows())
	}
	for i := 0; i < whole.NumRows(); i++ {
		if whole.Row(i) != split.Row(i) {
			t.Errorf("row %d differs: %+v vs %+v", i, whole.Row(i), split.Row(i))
		}
	}
}

type fixedPredicate struct {
	keep []bool
}

func (p fixedPredicate) Eval(batch segment.DataPointBatch) []bool {
	return p.keep[:batch.NumRows()]
}

func TestGridStreamAppliesPredicate(t *testing.T) {
	var batch segment.CompressedBatch
	batch.AppendRow(pmcSegment(1, 0, 3, 10))

	source := &fakeSegmentSource{partitions: [][]segment.CompressedBatch{{batch}}}
	predicate := fixedPredicate{keep: []bool{true, false, true}}
	exec := NewGridExec(source, model.DefaultRegistry(), predicate, 1024)

	stream, err := exec.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	out := drain(t, stream)
	if n := out.NumRows(); n != 2 {
		t.Fatalf("NumRows() = %d, want 2 after predicate filtering", n)
	}
}

func TestGridStreamRejectsUnorderedInput(t *testing.T) {
	var batch segment.CompressedBatch
	batch.AppendRow(pmcSegment(2, 0, 1, 1))
	batch.AppendRow(pmcSegment(1, 0, 1, 2))

	source := &fakeSegmentSource{partitions: [][]segment.CompressedBatch{{batch}}}
	exec := NewGridExec(source, model.DefaultRegistry(), nil, 1024)

	stream, err := exec.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := stream.Next(context.Background()); err == nil {
		t.Error("expected an error for unordered input segments")
	}
}

func TestGridStreamBatchSizeRespectsLimit(t *testing.T) {
	var batch segment.CompressedBatch
	batch.AppendRow(pmcSegment(1, 0, 10, 1))

	source := &fakeSegmentSource{partitions: [][]segment.CompressedBatch{{batch}}}
	limit := 3
	exec := NewGridExec(source, model.DefaultRegistry(), nil, 1024)
	exec.Limit = &limit

	stream, err := exec.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	first, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if n := first.NumRows(); n != 3 {
		t.Fatalf("first batch NumRows() = %d, want 3 (effective batch size = min(limit, engine batch size))", n)
	}
}

func TestGridExecWithNewChildrenRejectsNonEmpty(t *testing.T) {
	exec := NewGridExec(&fakeSegmentSource{}, model.DefaultRegistry(), nil, 1024)
	if _, err := exec.WithNewChildren([]execplan.ExecPlan{nil}); err == nil {
		t.Error("expected error when children are given to a leaf plan node")
	}
}

func TestGridExecString(t *testing.T) {
	exec := NewGridExec(&fakeSegmentSource{}, model.DefaultRegistry(), nil, 1024)
	if got := exec.String(); got != "GridExec" {
		t.Errorf("String() = %q, want %q", got, "GridExec")
	}
	limit := 5
	exec.Limit = &limit
	if got := exec.String(); got != "GridExec: limit=5" {
		t.Errorf("String() = %q, want %q", got, "GridExec: limit=5")
	}
}
