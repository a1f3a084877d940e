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

// Package execplan declares the minimal query-engine primitives the grid
// operator plugs into: a plan node and the pull-based stream it produces.
//
// Cooperatively-scheduled query engines built around an async poll loop
// return a pending/ready signal and let the runtime park the task when no
// row is yet available. Go has no equivalent poll/wake protocol in
// ordinary library code, so Stream.Next here simply blocks the calling
// goroutine until a batch is ready, an error occurs, or the stream is
// exhausted -- the same contract io.Reader gives callers.
package execplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/MORE-EU/modelardb-go/segment"
)

// ErrPlan wraps a plan-construction or execution error with the name of
// the plan node that produced it.
type ErrPlan struct {
	Node string
	Err  error
}

func (e *ErrPlan) Error() string {
	return fmt.Sprintf("execplan: %s: %v", e.Node, e.Err)
}

func (e *ErrPlan) Unwrap() error {
	return e.Err
}

// Distribution describes how a plan node expects its input partitioned.
type Distribution int

const (
	// DistributionUnspecified means the node has no partitioning
	// requirement.
	DistributionUnspecified Distribution = iota
	// DistributionSinglePartition means the node requires exactly one
	// input partition.
	DistributionSinglePartition
)

// SortExpr names one column a plan node's output (or required input) is
// ordered by.
type SortExpr struct {
	ColumnIndex int
	Ascending   bool
}

// Predicate is a pushed-down filter a Stream applies to its output rows.
// Eval returns, for each row in batch, whether the row should be kept.
type Predicate interface {
	Eval(batch segment.DataPointBatch) []bool
}

// Metrics reports execution statistics a Stream accumulates as it runs.
type Metrics struct {
	OutputRows int64
	PollCount  int64
}

// Statistics reports what a plan node knows about its output's size ahead
// of execution. A nil pointer field means the quantity is unknown.
type Statistics struct {
	NumRows       *int64
	TotalByteSize *int64
}

// ExecPlan is a node in a query plan: it exposes its children, its
// required and produced orderings, and the single factory method that
// builds the Stream which actually pulls rows.
type ExecPlan interface {
	// Children returns this node's input plans, if any.
	Children() []ExecPlan
	// WithNewChildren returns a copy of this node with its children
	// replaced by children. len(children) must equal len(Children()).
	WithNewChildren(children []ExecPlan) (ExecPlan, error)
	// Schema names the columns this node's Stream produces.
	Schema() []string
	// OutputOrdering reports the ordering this node's output is known to
	// satisfy, or nil if unordered.
	OutputOrdering() []SortExpr
	// EquivalenceProperties reports orderings this node's output is known
	// to satisfy beyond OutputOrdering -- e.g. an ordering implied by a
	// required input ordering the node preserves row-for-row. A plan node
	// with no extra equivalences returns the same value as
	// OutputOrdering.
	EquivalenceProperties() []SortExpr
	// RequiredInputOrdering reports the ordering this node requires of
	// each of its children's output, or nil if none.
	RequiredInputOrdering() []SortExpr
	// RequiredInputDistribution reports how this node requires its
	// children's output to be partitioned.
	RequiredInputDistribution() Distribution
	// Statistics reports what is known about this node's output size
	// ahead of execution.
	Statistics() Statistics
	// Execute builds the Stream for partition index partition.
	Execute(ctx context.Context, partition int) (Stream, error)
	// String returns a one-line, human-readable description of this node,
	// e.g. "GridExec: limit=1024".
	String() string
}

// Stream is a pull-based source of DataPointBatch values. Next blocks
// until a batch is ready, returns io.EOF once exhausted, or returns any
// other error if production failed.
type Stream interface {
	Next(ctx context.Context) (segment.DataPointBatch, error)
	// Metrics reports this stream's execution statistics so far.
	Metrics() Metrics
}

// errUnsupported is returned by WithNewChildren implementations that
// receive the wrong number of children.
var errUnsupported = errors.New("execplan: wrong number of children")

// ErrWrongChildCount is returned by WithNewChildren when len(children)
// does not match what the node expects.
func ErrWrongChildCount() error {
	return errUnsupported
}
