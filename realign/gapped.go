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
	"sort"

	"github.com/grailbio/bio/interval"
)

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// GapChar is the symbol used to render alignment-gap columns.
const GapChar = '-'

// A gapRun is a maximal run of gap columns sitting immediately before
// Src[srcOff].  cum is the total gap width at source offsets <= srcOff, so
// that view coordinates can be recovered with a single binary search.
type gapRun struct {
	srcOff PosType
	width  PosType
	cum    PosType
}

// GappedSeq stores a gapped sequence sparsely: the ungapped source symbols
// plus a sorted run list of inserted gap columns.  Both the contig window
// and every placed read own exactly one of these.  Conversion between
// source and view coordinates is O(log n) in the number of runs; inserting
// a run is O(n) for the slice shuffle, with n small in practice (one run
// per indel).
type GappedSeq struct {
	Src  []byte
	runs []gapRun
}

// NewGappedSeq wraps src with no gap columns.
func NewGappedSeq(src []byte) GappedSeq { return GappedSeq{Src: src} }

// SourceLen returns the ungapped length.
func (g *GappedSeq) SourceLen() PosType { return PosType(len(g.Src)) }

// ViewLen returns the gapped length.
func (g *GappedSeq) ViewLen() PosType {
	if n := len(g.runs); n > 0 {
		return PosType(len(g.Src)) + g.runs[n-1].cum
	}
	return PosType(len(g.Src))
}

// GapTotal returns the total number of gap columns.
func (g *GappedSeq) GapTotal() PosType {
	if n := len(g.runs); n > 0 {
		return g.runs[n-1].cum
	}
	return 0
}

// ViewPos converts a source offset to its view coordinate.  A gap run at
// srcOff sits before the symbol, so the symbol's view position includes
// that run's width.
func (g *GappedSeq) ViewPos(srcOff PosType) PosType {
	idx := sort.Search(len(g.runs), func(i int) bool { return g.runs[i].srcOff > srcOff })
	if idx == 0 {
		return srcOff
	}
	return srcOff + g.runs[idx-1].cum
}

// InsertGapsAtSource inserts width gap columns immediately before
// Src[srcOff]; srcOff may equal SourceLen() for a trailing run.  A run
// already at srcOff widens instead of splitting.
func (g *GappedSeq) InsertGapsAtSource(srcOff, width PosType) error {
	if width <= 0 {
		return fmt.Errorf("realign.GappedSeq: non-positive gap width %d", width)
	}
	if srcOff < 0 || srcOff > PosType(len(g.Src)) {
		return fmt.Errorf("realign.GappedSeq: source offset %d out of range [0,%d]", srcOff, len(g.Src))
	}
	idx := sort.Search(len(g.runs), func(i int) bool { return g.runs[i].srcOff >= srcOff })
	if idx < len(g.runs) && g.runs[idx].srcOff == srcOff {
		g.runs[idx].width += width
	} else {
		var cum PosType
		if idx > 0 {
			cum = g.runs[idx-1].cum
		}
		g.runs = append(g.runs, gapRun{})
		copy(g.runs[idx+1:], g.runs[idx:])
		g.runs[idx] = gapRun{srcOff: srcOff, width: width, cum: cum}
	}
	for i := idx; i < len(g.runs); i++ {
		g.runs[i].cum += width
	}
	return nil
}

// InsertGapsAtView inserts width gap columns at the given view coordinate.
// A view coordinate at or inside an existing run widens that run;
// otherwise a new run is created at the corresponding source offset.
func (g *GappedSeq) InsertGapsAtView(viewOff, width PosType) error {
	if viewOff < 0 || viewOff > g.ViewLen() {
		return fmt.Errorf("realign.GappedSeq: view offset %d out of range [0,%d]", viewOff, g.ViewLen())
	}
	// First run whose view-end is >= viewOff.
	idx := sort.Search(len(g.runs), func(i int) bool {
		return g.runs[i].srcOff+g.runs[i].cum >= viewOff
	})
	if idx < len(g.runs) {
		r := g.runs[idx]
		if r.srcOff+r.cum-r.width <= viewOff {
			g.runs[idx].width += width
			for i := idx; i < len(g.runs); i++ {
				g.runs[i].cum += width
			}
			return nil
		}
	}
	var cumBefore PosType
	if idx > 0 {
		cumBefore = g.runs[idx-1].cum
	}
	return g.InsertGapsAtSource(viewOff-cumBefore, width)
}

// Bytes materializes the gapped sequence, rendering gap columns as
// GapChar.
func (g *GappedSeq) Bytes() []byte {
	out := make([]byte, 0, g.ViewLen())
	var next PosType
	for _, r := range g.runs {
		out = append(out, g.Src[next:r.srcOff]...)
		for i := PosType(0); i < r.width; i++ {
			out = append(out, GapChar)
		}
		next = r.srcOff
	}
	return append(out, g.Src[next:]...)
}
