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

import "sort"

// gapEntry is one required gap-column block: width columns at the
// (window-relative, pre-projection) reference offset pos.
type gapEntry struct {
	pos   PosType
	width PosType
}

// refGapLedger accumulates, per reference offset, the maximum insertion
// width observed across all reads in the window.  It is the single source
// of truth for the gap columns materialized by projection, and is
// discarded once the window's layout is built.
type refGapLedger map[PosType]PosType

// record accumulates width at pos; zero-width entries are never emitted.
func (l refGapLedger) record(pos, width PosType) {
	if width <= 0 {
		return
	}
	if width > l[pos] {
		l[pos] = width
	}
}

// descending returns the ledger entries ordered by decreasing reference
// offset.  Projection depends on this order: materializing a higher offset
// first leaves every lower, not-yet-processed offset's coordinates
// untouched.
func (l refGapLedger) descending() []gapEntry {
	entries := make([]gapEntry, 0, len(l))
	for pos, width := range l {
		entries = append(entries, gapEntry{pos: pos, width: width})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos > entries[j].pos })
	return entries
}

// totalWidth returns the sum of all required gap widths; the contig's
// final gapped length exceeds the window length by exactly this amount.
func (l refGapLedger) totalWidth() PosType {
	var total PosType
	for _, width := range l {
		total += width
	}
	return total
}
