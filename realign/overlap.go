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

	"github.com/biogo/store/interval"
)

// readSpan is one read's initial half-open span; the payload is the read's
// index in Layout.Reads.
type readSpan struct {
	start, end int
	id         uintptr
}

func (s readSpan) Overlap(b interval.IntRange) bool { return s.end > b.Start && s.start < b.End }
func (s readSpan) ID() uintptr                      { return s.id }
func (s readSpan) Range() interval.IntRange         { return interval.IntRange{Start: s.start, End: s.end} }

// overlapIndex answers "which reads span reference offset x" queries over
// the initial (pre-projection) placements.  The tree is built once per
// window and never updated: ledger positions are pre-projection
// coordinates, so queries stay valid while projection shifts the reads.
type overlapIndex struct {
	tree interval.IntTree
}

func newOverlapIndex(reads []*PlacedRead) (*overlapIndex, error) {
	x := &overlapIndex{}
	for i, pr := range reads {
		if pr.initEnd <= pr.initBegin {
			continue
		}
		span := readSpan{start: int(pr.initBegin), end: int(pr.initEnd), id: uintptr(i)}
		if err := x.tree.Insert(span, true); err != nil {
			return nil, fmt.Errorf("realign.newOverlapIndex: read %s: %v", pr.Name, err)
		}
	}
	x.tree.AdjustRanges()
	return x, nil
}

// at returns the indexes of every read whose initial span contains pos.
func (x *overlapIndex) at(pos PosType) []int {
	var ids []int
	x.tree.DoMatching(func(e interval.IntInterface) (done bool) {
		ids = append(ids, int(e.ID()))
		return
	}, readSpan{start: int(pos), end: int(pos) + 1})
	return ids
}
