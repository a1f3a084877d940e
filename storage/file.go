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

package storage

import (
	"time"

	"github.com/MORE-EU/modelardb-go/segment"
)

// SortKey describes one column a persisted file is sorted by.
type SortKey struct {
	ColumnIndex int
	Ascending   bool
	NullsFirst  bool
}

// RequiredSortKeys is the fixed two-key sort order every flushed file
// declares: univariate_id (column 0) then start_time (column 2), both
// ascending with nulls first, matching the compressed-segment schema.
var RequiredSortKeys = []SortKey{
	{ColumnIndex: 0, Ascending: true, NullsFirst: true}, // univariate_id
	{ColumnIndex: 2, Ascending: true, NullsFirst: true}, // start_time
}

// FileDescriptor describes a file written by Buffer.Flush: an
// object-store-style record plus a min/max summary over the sort keys.
type FileDescriptor struct {
	// Location is the path of the file relative to the local root it was
	// flushed under, e.g. "<relative_folder>/<uuid>.cseg".
	Location string
	// LastModified is the file's mtime as reported by the filesystem.
	LastModified time.Time
	// Size is the exact on-disk byte size of the written file.
	Size int64
	// ETag and Version are always nil for a locally-flushed file: there is
	// no object-store layer in scope to assign them.
	ETag    *string
	Version *string
	// ContentChecksum is a blake2b-256 digest of the whole encoded file as
	// written (header and compressed payload), supplementing the null ETag/Version with a locally
	// verifiable integrity check (see DESIGN.md's open-question notes).
	ContentChecksum [32]byte
	// SortKeys is the sort order the file declares; always RequiredSortKeys
	// for files Buffer.Flush produces.
	SortKeys []SortKey
	// MinUnivariateID/MaxUnivariateID and MinStartTime/MaxStartTime are the
	// min/max summary over the sort keys.
	MinUnivariateID segment.UnivariateID
	MaxUnivariateID segment.UnivariateID
	MinStartTime    segment.Timestamp
	MaxStartTime    segment.Timestamp
}
