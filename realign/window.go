// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package realign

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// Window is the genomic interval being laid out in one pass: a contig plus
// a 0-based half-open [Begin, End) range.  A Window is owned by exactly
// one region's processing pass; it grows while loading so that every
// overlapping record's aligned extent fits inside it.
type Window struct {
	Ref   *sam.Reference
	Begin PosType
	End   PosType
}

// String renders the window in the usual 1-based inclusive form.
func (w Window) String() string {
	return fmt.Sprintf("%s:%d-%d", w.Ref.Name(), w.Begin+1, w.End)
}

// Len returns the ungapped window length.
func (w Window) Len() PosType { return w.End - w.Begin }

// extendRadius grows the window symmetrically by radius, clamping at 0 on
// the left and at the contig length on the right.
func (w *Window) extendRadius(radius PosType) {
	w.Begin -= radius
	if w.Begin < 0 {
		w.Begin = 0
	}
	w.End += radius
	if limit := PosType(w.Ref.Len()); w.End > limit {
		w.End = limit
	}
}

// extendRecord grows the window to cover the record's aligned extent.
// Records on another contig leave the window untouched.
func (w *Window) extendRecord(rec *sam.Record) {
	if rec.Ref == nil || rec.Ref.ID() != w.Ref.ID() {
		return
	}
	if p := PosType(rec.Pos); p < w.Begin {
		w.Begin = p
	}
	span, _ := rec.Cigar.Lengths()
	if e := PosType(rec.Pos + span); e > w.End {
		w.End = e
	}
}
