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

import "golang.org/x/exp/slices"

// segmentKey is the (univariate_id, start_time) pair segment-order is
// defined over.
type segmentKey struct {
	id    UnivariateID
	start Timestamp
}

func lessSegmentKey(a, b segmentKey) bool {
	if a.id != b.id {
		return a.id < b.id
	}
	return a.start.Before(b.start)
}

// IsSegmentOrdered reports whether b's rows are sorted by
// (univariate_id asc, start_time asc), the input ordering GridExec requires
// from its child. GridStream calls this on every batch it pulls, so a
// misordered source fails fast with a descriptive error instead of
// silently producing misordered output.
func IsSegmentOrdered(b *CompressedBatch) bool {
	keys := make([]segmentKey, b.NumRows())
	for i := range keys {
		keys[i] = segmentKey{b.UnivariateID[i], b.StartTime[i]}
	}
	return slices.IsSortedFunc(keys, lessSegmentKey)
}

// pointKey is the (univariate_id, timestamp) pair point-order is defined
// over.
type pointKey struct {
	id UnivariateID
	ts Timestamp
}

func lessPointKey(a, b pointKey) bool {
	if a.id != b.id {
		return a.id < b.id
	}
	return a.ts.Before(b.ts)
}

// IsPointOrdered reports whether b's rows are sorted by
// (univariate_id asc, timestamp asc), the output ordering GridStream
// guarantees.
func IsPointOrdered(b DataPointBatch) bool {
	keys := make([]pointKey, b.NumRows())
	for i := range keys {
		keys[i] = pointKey{b.UnivariateID[i], b.Timestamp[i]}
	}
	return slices.IsSortedFunc(keys, lessPointKey)
}
