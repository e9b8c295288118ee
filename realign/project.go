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

import "fmt"

// projectGaps materializes the ledger's gap columns consistently across
// every placed read and finally the contig itself.
//
// Entries are processed in descending reference order.  The order is
// load-bearing: inserting at a higher offset first leaves every lower,
// not-yet-processed offset's coordinates unshifted, so the read-local
// offsets computed for lower entries need no recomputation.
//
// Per entry (pos, width):
//   - reads spanning pos strictly in their interior receive width minus
//     their own contribution at pos as new gap columns, placed right after
//     their own inserted bases, and their End grows by the full width;
//   - a read whose span begins exactly at pos is repositioned by the shift
//     step instead; an insertion at a read's trailing edge is dropped
//     (spans are not extended past the last aligned base);
//   - every read at or right of pos shifts right by width.
//
// All failures here are invariant violations; they abort the current
// region only.
func projectGaps(lay *Layout, ledger refGapLedger, idx *overlapIndex) error {
	entries := ledger.descending()
	for _, e := range entries {
		for _, ri := range idx.at(e.pos) {
			pr := lay.Reads[ri]
			rawOff := e.pos - pr.initBegin
			if rawOff <= 0 || rawOff >= pr.initEnd-pr.initBegin {
				continue
			}
			self := pr.selfWidthAt(e.pos)
			excess := e.width - self
			if excess < 0 {
				return fmt.Errorf("realign.projectGaps: read %s inserts %d at offset %d, exceeding ledger width %d",
					pr.Name, self, e.pos, e.width)
			}
			if excess > 0 {
				viewOff := rawOff + pr.selfWidthThrough(e.pos)
				if err := pr.Seq.InsertGapsAtView(viewOff, excess); err != nil {
					return fmt.Errorf("realign.projectGaps: read %s at offset %d: %v", pr.Name, e.pos, err)
				}
			}
			// The full column block now lies inside the read's span.
			pr.End += e.width
		}
		for _, pr := range lay.Reads {
			if pr.Begin >= e.pos {
				pr.Begin += e.width
				pr.End += e.width
			}
		}
	}
	for _, e := range entries {
		if err := lay.Contig.InsertGapsAtSource(e.pos, e.width); err != nil {
			return fmt.Errorf("realign.projectGaps: contig at offset %d: %v", e.pos, err)
		}
	}
	return nil
}
