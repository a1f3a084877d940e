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

// Package date provides a compact, comparable timestamp type for segment
// and data-point bounds.
//
// This is a trimmed sibling of a fuller calendar package: segment and data
// point timestamps are only ever constructed from a Unix microsecond value,
// compared, and converted back to one, so the calendar component
// accessors, RFC3339 parsing/formatting, and calendar arithmetic a general
// date package would carry are not needed here.
package date

import "time"

// A Time is a fixed-width, comparable instant with microsecond precision.
type Time struct {
	us int64
}

// UnixMicro returns a Time from the given Unix time in microseconds.
func UnixMicro(us int64) Time {
	return Time{us: us}
}

// Now returns the current time, truncated to microsecond precision.
func Now() Time {
	return UnixMicro(time.Now().UnixMicro())
}

// UnixMicro returns t as the number of microseconds since the Unix epoch.
func (t Time) UnixMicro() int64 {
	return t.us
}

// Equal returns whether t == t2.
func (t Time) Equal(t2 Time) bool {
	return t.us == t2.us
}

// Before returns whether t is before t2.
func (t Time) Before(t2 Time) bool {
	return t.us < t2.us
}

// After returns whether t is after t2.
func (t Time) After(t2 Time) bool {
	return t.us > t2.us
}

// IsZero returns whether t is the zero value, corresponding to the Unix
// epoch.
func (t Time) IsZero() bool {
	return t.us == 0
}

// String implements fmt.Stringer. The returned string is meant for
// debugging purposes.
func (t Time) String() string {
	return time.UnixMicro(t.us).UTC().Format(time.RFC3339Nano)
}
