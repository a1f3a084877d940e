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

// Package grid implements the grid operator: a plan node that pulls
// compressed segments from its child, reconstructs each into its
// constituent data points via model.Registry.Grid, and emits data points in global
// (univariate_id, timestamp) order.
package grid

import (
	"context"
	"fmt"

	"github.com/MORE-EU/modelardb-go/execplan"
	"github.com/MORE-EU/modelardb-go/model"
	"github.com/MORE-EU/modelardb-go/segment"
)

// Errorf is called with a formatted message whenever a GridStream logs a
// diagnostic. The default implementation discards the message.
var Errorf = func(string, ...any) {}

// SegmentStream is a pull-based source of CompressedBatch values, sorted by
// (univariate_id, start_time). It is the upstream contract GridExec
// consumes.
type SegmentStream interface {
	Next(ctx context.Context) (segment.CompressedBatch, error)
}

// SegmentSource is the child plan a GridExec wraps: something that can be
// executed into a SegmentStream for a given partition. It plays the role a
// scan node plays upstream of any query engine's reconstruction operator.
type SegmentSource interface {
	Schema() []string
	Execute(ctx context.Context, partition int) (SegmentStream, error)
}

// GridExec is the plan node form of the grid operator. It implements
// execplan.ExecPlan so it composes into a larger query plan the way any
// other plan node does.
type GridExec struct {
	child     SegmentSource
	registry  *model.Registry
	predicate execplan.Predicate
	// Limit narrows the stream's batch size to at most *Limit rows per
	// emitted batch. It does not cap the total number of rows a stream
	// emits. A nil Limit leaves the batch size at EngineBatchSize.
	Limit *int
	// EngineBatchSize is the batch size a host query engine would
	// otherwise supply via session configuration.
	EngineBatchSize int
}

// NewGridExec builds a GridExec over child. registry resolves each
// segment's model type to a reconstruction kernel; predicate, if non-nil,
// filters reconstructed rows before they are returned.
func NewGridExec(child SegmentSource, registry *model.Registry, predicate execplan.Predicate, engineBatchSize int) *GridExec {
	return &GridExec{
		child:           child,
		registry:        registry,
		predicate:       predicate,
		EngineBatchSize: engineBatchSize,
	}
}

// Children implements execplan.ExecPlan.
func (g *GridExec) Children() []execplan.ExecPlan {
	return nil
}

// WithNewChildren implements execplan.ExecPlan. GridExec wraps a
// SegmentSource, not an execplan.ExecPlan, so it has no ExecPlan children
// to replace.
func (g *GridExec) WithNewChildren(children []execplan.ExecPlan) (execplan.ExecPlan, error) {
	if len(children) != 0 {
		return nil, &execplan.ErrPlan{Node: "GridExec", Err: execplan.ErrWrongChildCount()}
	}
	clone := *g
	return &clone, nil
}

// Schema implements execplan.ExecPlan: the grid operator always produces
// (univariate_id, timestamp, value) rows.
func (g *GridExec) Schema() []string {
	return []string{"univariate_id", "timestamp", "value"}
}

// OutputOrdering implements execplan.ExecPlan: grid output is ordered by
// univariate_id then timestamp.
func (g *GridExec) OutputOrdering() []execplan.SortExpr {
	return []execplan.SortExpr{
		{ColumnIndex: 0, Ascending: true}, // univariate_id
		{ColumnIndex: 1, Ascending: true}, // timestamp
	}
}

// EquivalenceProperties implements execplan.ExecPlan. Grid reconstruction
// preserves the required input ordering row-for-row within a segment and
// extends it to (univariate_id, timestamp), so output ordering is the only
// equivalence it can claim.
func (g *GridExec) EquivalenceProperties() []execplan.SortExpr {
	return g.OutputOrdering()
}

// RequiredInputOrdering implements execplan.ExecPlan: the child must
// produce segments ordered by univariate_id then start_time.
func (g *GridExec) RequiredInputOrdering() []execplan.SortExpr {
	return []execplan.SortExpr{
		{ColumnIndex: 0, Ascending: true}, // univariate_id
		{ColumnIndex: 2, Ascending: true}, // start_time
	}
}

// RequiredInputDistribution implements execplan.ExecPlan: all segments for
// a given univariate_id must land in the same partition, since GridStream's
// leftover buffer only orders rows within one partition's stream. A
// multi-partition input would have to repartition by univariate_id first;
// grid itself always requires single-partition input.
func (g *GridExec) RequiredInputDistribution() execplan.Distribution {
	return execplan.DistributionSinglePartition
}

// Statistics implements execplan.ExecPlan. Reconstruction can expand one
// segment into many points, so row count and byte size are never known
// ahead of execution.
func (g *GridExec) Statistics() execplan.Statistics {
	return execplan.Statistics{}
}

// Execute implements execplan.ExecPlan.
func (g *GridExec) Execute(ctx context.Context, partition int) (execplan.Stream, error) {
	child, err := g.child.Execute(ctx, partition)
	if err != nil {
		return nil, &execplan.ErrPlan{Node: "GridExec", Err: err}
	}
	batchSize := g.EngineBatchSize
	if batchSize <= 0 {
		batchSize = 1024
	}
	if g.Limit != nil && *g.Limit < batchSize {
		batchSize = *g.Limit
	}
	registry := g.registry
	if registry == nil {
		registry = model.DefaultRegistry()
	}
	return newGridStream(child, registry, g.predicate, batchSize), nil
}

// String implements execplan.ExecPlan.
func (g *GridExec) String() string {
	if g.Limit != nil {
		return fmt.Sprintf("GridExec: limit=%d", *g.Limit)
	}
	return "GridExec"
}
