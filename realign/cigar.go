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

// walkCigar converts one mapped record into its initial placement.  Soft
// and hard clips are stripped (clipped prefixes/suffixes are opaque here),
// the read's own deletions and skips are materialized as gaps, and its
// insertions are recorded for later projection: the inserted bases stay in
// the sequence, but no gap columns exist for them anywhere yet.
//
// The returned read is placed in window-relative, ungapped reference
// coordinates.  A CIGAR that runs past the record's sequence, starts
// before the window origin, or contains an op kind outside M/I/D/N/S/H/P/=/X
// fails with ErrMalformedCigar; the caller skips the read and the region
// continues.
func walkCigar(rec *sam.Record, win Window) (*PlacedRead, error) {
	refOff := PosType(rec.Pos) - win.Begin
	if refOff < 0 {
		return nil, fmt.Errorf("realign.walkCigar: read %s starts %d bases before window %s: %w",
			rec.Name, -refOff, win, ErrMalformedCigar)
	}
	raw := rec.Seq.Expand()

	type pendingGap struct {
		srcOff PosType
		width  PosType
	}
	pr := &PlacedRead{Name: rec.Name, Begin: refOff, initBegin: refOff}
	var (
		src     []byte
		gaps    []pendingGap
		readPos int
	)
	for _, co := range rec.Cigar {
		n := co.Len()
		if n == 0 {
			continue
		}
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if readPos+n > len(raw) {
				return nil, opOverrunError(rec, co, readPos, len(raw))
			}
			src = append(src, raw[readPos:readPos+n]...)
			readPos += n
			refOff += PosType(n)
		case sam.CigarInsertion:
			if readPos+n > len(raw) {
				return nil, opOverrunError(rec, co, readPos, len(raw))
			}
			if k := len(pr.inserts); k > 0 && pr.inserts[k-1].refOff == refOff {
				pr.inserts[k-1].width += PosType(n)
			} else {
				pr.inserts = append(pr.inserts, selfInsert{refOff: refOff, width: PosType(n)})
			}
			src = append(src, raw[readPos:readPos+n]...)
			readPos += n
		case sam.CigarDeletion, sam.CigarSkipped:
			if k := len(gaps); k > 0 && gaps[k-1].srcOff == PosType(len(src)) {
				gaps[k-1].width += PosType(n)
			} else {
				gaps = append(gaps, pendingGap{srcOff: PosType(len(src)), width: PosType(n)})
			}
			refOff += PosType(n)
		case sam.CigarSoftClipped:
			if readPos+n > len(raw) {
				return nil, opOverrunError(rec, co, readPos, len(raw))
			}
			readPos += n
		case sam.CigarHardClipped:
			// Clipped bases are absent from the sequence; nothing moves.
		case sam.CigarPadded:
			// Deliberate no-op: padding consumes neither read nor reference.
		default:
			return nil, fmt.Errorf("realign.walkCigar: read %s: unsupported op %v: %w",
				rec.Name, co, ErrMalformedCigar)
		}
	}
	if readPos != len(raw) {
		return nil, fmt.Errorf("realign.walkCigar: read %s: CIGAR consumes %d of %d sequence bases: %w",
			rec.Name, readPos, len(raw), ErrMalformedCigar)
	}
	pr.End = refOff
	pr.initEnd = refOff
	pr.Seq = NewGappedSeq(src)
	for _, gap := range gaps {
		if err := pr.Seq.InsertGapsAtSource(gap.srcOff, gap.width); err != nil {
			return nil, fmt.Errorf("realign.walkCigar: read %s: %v", rec.Name, err)
		}
	}
	return pr, nil
}

func opOverrunError(rec *sam.Record, co sam.CigarOp, readPos, seqLen int) error {
	return fmt.Errorf("realign.walkCigar: read %s: op %v at sequence offset %d overruns %d-base sequence: %w",
		rec.Name, co, readPos, seqLen, ErrMalformedCigar)
}
