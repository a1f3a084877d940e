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

// Package model provides the reconstruction kernel contract the grid stream
// depends on along with two reference implementations.
//
// The model-fitting and compression side of the system is explicitly out of
// scope here: Reconstructor is the only surface grid.GridStream touches,
// and it is deliberately treated as a black box there. The concrete models
// in this package exist so the rest of the module is testable end to end;
// they are not meant to be an exhaustive model family.
package model

import "github.com/MORE-EU/modelardb-go/segment"

// Reconstructor turns one compressed segment row into one or more
// (univariate_id, timestamp, value) points, appended to out. It must
// append at least one point and must be pure: no I/O, no retained
// references to seg's byte slices after it returns.
type Reconstructor interface {
	Reconstruct(seg segment.CompressedSegment, out *segment.DataPointBuilders) error
}

// Registry dispatches a segment.ModelType to the Reconstructor that knows
// how to expand it.
type Registry struct {
	byType map[segment.ModelType]Reconstructor
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[segment.ModelType]Reconstructor)}
}

// Register associates a model type with a Reconstructor. It panics if the
// model type is already registered, since that would make dispatch
// ambiguous.
func (r *Registry) Register(t segment.ModelType, rec Reconstructor) {
	if _, exists := r.byType[t]; exists {
		panic("model: duplicate registration for model type")
	}
	r.byType[t] = rec
}

// Grid reconstructs one segment row using the Reconstructor registered for
// seg.ModelType. It returns an error if no Reconstructor is registered for
// that model type; a well-formed input never triggers this once the
// registry used in production has been populated with every model type the
// compression side can emit.
func (r *Registry) Grid(seg segment.CompressedSegment, out *segment.DataPointBuilders) error {
	rec, ok := r.byType[seg.ModelType]
	if !ok {
		return &UnknownModelTypeError{ModelType: seg.ModelType}
	}
	return rec.Reconstruct(seg, out)
}

// UnknownModelTypeError is returned by Registry.Grid when a segment names a
// model type with no registered Reconstructor.
type UnknownModelTypeError struct {
	ModelType segment.ModelType
}

func (e *UnknownModelTypeError) Error() string {
	return "model: no reconstructor registered for model type"
}

// Default model type identifiers for the two reference implementations in
// this package. A real deployment would assign these the same IDs the
// compression side uses when it fits a model.
const (
	TypePMCMean segment.ModelType = 1
	TypeSwing   segment.ModelType = 2
)

// DefaultRegistry returns a Registry with PMCMean and Swing registered
// under TypePMCMean and TypeSwing.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypePMCMean, PMCMean{})
	r.Register(TypeSwing, Swing{})
	return r
}
