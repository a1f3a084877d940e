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
	"fmt"
	"io"

	"github.com/MORE-EU/modelardb-go/execplan"
	"github.com/MORE-EU/modelardb-go/model"
	"github.com/MORE-EU/modelardb-go/segment"
)

// GridStream reconstructs compressed segments pulled from child into data
// points, carrying any rows that exceed one output batch over to the next
// call to Next so the global (univariate_id, timestamp) ordering is never
// broken by a batch boundary.
type GridStream struct {
	child     SegmentStream
	registry  *model.Registry
	predicate execplan.Predicate
	batchSize int

	leftover       segment.DataPointBatch
	leftoverOffset int
	childDone      bool

	metrics execplan.Metrics
}

func newGridStream(child SegmentStream, registry *model.Registry, predicate execplan.Predicate, batchSize int) *GridStream {
	return &GridStream{
		child:     child,
		registry:  registry,
		predicate: predicate,
		batchSize: batchSize,
	}
}

// Next implements execplan.Stream. If the leftover buffer holds fewer than
// batchSize rows and child is not yet exhausted, Next attempts to pull
// exactly one more segment batch from child before emitting; it never
// loops pulling batches within a single call. A single refill attempt per
// poll keeps Next responsive to ctx cancellation even when child is slow,
// at the cost of sometimes emitting a batch smaller than batchSize.
func (s *GridStream) Next(ctx context.Context) (segment.DataPointBatch, error) {
	s.metrics.PollCount++

	if s.pending() < s.batchSize && !s.childDone {
		if err := ctx.Err(); err != nil {
			return segment.DataPointBatch{}, err
		}

		segBatch, err := s.child.Next(ctx)
		switch {
		case err == io.EOF:
			s.childDone = true
		case err != nil:
			return segment.DataPointBatch{}, err
		default:
			if err := s.gridAndAppendToLeftover(segBatch); err != nil {
				return segment.DataPointBatch{}, err
			}
		}
	}

	pending := s.pending()
	if pending == 0 {
		return segment.DataPointBatch{}, io.EOF
	}

	take := pending
	if take > s.batchSize {
		take = s.batchSize
	}
	out := s.leftover.Slice(s.leftoverOffset, take)
	s.leftoverOffset += take

	if s.predicate != nil {
		out = out.Filter(s.predicate.Eval(out))
	}

	s.metrics.OutputRows += int64(out.NumRows())
	Errorf("grid: emitted %d rows (%d pending)", out.NumRows(), s.pending())
	return out, nil
}

// Metrics implements execplan.Stream.
func (s *GridStream) Metrics() execplan.Metrics {
	return s.metrics
}

func (s *GridStream) pending() int {
	return s.leftover.NumRows() - s.leftoverOffset
}

// gridAndAppendToLeftover reconstructs every segment in batch and appends
// the resulting points after whatever remains of the current leftover.
func (s *GridStream) gridAndAppendToLeftover(batch segment.CompressedBatch) error {
	if !segment.IsSegmentOrdered(&batch) {
		return fmt.Errorf("grid: input batch violates segment order (univariate_id, start_time ascending)")
	}

	pending := s.pending()
	builders := segment.NewDataPointBuilders(pending + batch.NumRows())
	builders.AppendLeftover(s.leftover, s.leftoverOffset)

	for i := 0; i < batch.NumRows(); i++ {
		seg := batch.Row(i)
		if err := s.registry.Grid(seg, builders); err != nil {
			return fmt.Errorf("grid: reconstructing univariate_id=%d: %w", seg.UnivariateID, err)
		}
	}

	s.leftover = builders.Finish()
	s.leftoverOffset = 0
	return nil
}
