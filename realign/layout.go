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

// PlacedRead is one mapped read laid out in shared contig coordinates: its
// gapped sequence plus the half-open [Begin, End) span.  Begin and End are
// window-relative and move during projection; after the layout is
// finalized they are never mutated again.
type PlacedRead struct {
	Name string
	Seq  GappedSeq

	Begin PosType
	End   PosType

	// initBegin/initEnd hold the placement before any projection shift.
	// Ledger positions and overlap queries are expressed in these
	// pre-projection coordinates.
	initBegin PosType
	initEnd   PosType

	// inserts lists the read's own insertions (window-relative reference
	// offset -> width), ascending.  This is the read's slice of the
	// insertion table: projection adds only the excess over these widths,
	// since the inserted bases already occupy columns in Seq.
	inserts []selfInsert
}

type selfInsert struct {
	refOff PosType
	width  PosType
}

// selfWidthAt returns the width the read itself inserts at refOff, or 0.
func (pr *PlacedRead) selfWidthAt(refOff PosType) PosType {
	for _, ins := range pr.inserts {
		if ins.refOff == refOff {
			return ins.width
		}
		if ins.refOff > refOff {
			break
		}
	}
	return 0
}

// selfWidthThrough returns the total width the read inserts at reference
// offsets <= refOff.
func (pr *PlacedRead) selfWidthThrough(refOff PosType) PosType {
	var total PosType
	for _, ins := range pr.inserts {
		if ins.refOff > refOff {
			break
		}
		total += ins.width
	}
	return total
}

// Layout is the gapped multiple-alignment layout of one window: the gapped
// contig sequence plus every placed read.  Each region produces an
// independent Layout; no state is shared across regions.
type Layout struct {
	Window Window
	Contig GappedSeq
	Reads  []*PlacedRead

	// Unaligned lists reads excluded from placement: unmapped records, and
	// mapped records whose CIGAR consumes no reference.
	Unaligned []string
	// Skipped counts records dropped because their CIGAR was malformed.
	Skipped int
}
