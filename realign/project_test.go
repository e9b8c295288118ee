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
	"strings"
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var testRef, _ = sam.NewReference("chr1", "", "", 1000, nil, nil)

func testWindow(begin, end PosType) Window {
	return Window{Ref: testRef, Begin: begin, End: end}
}

func fakeSeq(n int) string {
	const pattern = "ACGT"
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(pattern[i%4])
	}
	return sb.String()
}

func newTestRecord(name string, pos int, cigar sam.Cigar) *sam.Record {
	_, readLen := cigar.Lengths()
	seq := fakeSeq(readLen)
	return &sam.Record{
		Name:  name,
		Ref:   testRef,
		Pos:   pos,
		MapQ:  60,
		Cigar: cigar,
		Seq:   sam.NewSeq([]byte(seq)),
		Qual:  make([]byte, readLen),
	}
}

func TestNoInsertionIdentity(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	recs := []*sam.Record{
		newTestRecord("r1", 100, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)}),
		newTestRecord("r2", 130, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 20),
			sam.NewCigarOp(sam.CigarDeletion, 5),
			sam.NewCigarOp(sam.CigarMatch, 20),
		}),
	}
	lay, err := BuildLayout(win, refSeq, recs)
	assert.NoError(t, err)
	assert.EQ(t, string(lay.Contig.Bytes()), string(refSeq))
	assert.EQ(t, len(lay.Reads), 2)

	r1, r2 := lay.Reads[0], lay.Reads[1]
	expect.EQ(t, r1.Begin, PosType(0))
	expect.EQ(t, r1.End, PosType(50))
	expect.EQ(t, r1.Seq.GapTotal(), PosType(0))
	// r2's own deletion is a local gap, not a projected one.
	expect.EQ(t, r2.Begin, PosType(30))
	expect.EQ(t, r2.End, PosType(75))
	expect.EQ(t, r2.Seq.GapTotal(), PosType(5))
	expect.EQ(t, string(r2.Seq.Bytes()[20:25]), "-----")
}

// The worked example: window [100,200), read A 50M2I48M at 100, read B 80M
// at 120.  The contig gains two columns at offset 50, B gains two gap
// characters at local offset 30, A gains none, and both spans grow by two.
func TestCrossReadProjection(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	recs := []*sam.Record{
		newTestRecord("A", 100, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 50),
			sam.NewCigarOp(sam.CigarInsertion, 2),
			sam.NewCigarOp(sam.CigarMatch, 48),
		}),
		newTestRecord("B", 120, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 80)}),
	}
	lay, err := BuildLayout(win, refSeq, recs)
	assert.NoError(t, err)

	contig := string(lay.Contig.Bytes())
	assert.EQ(t, len(contig), 102)
	expect.EQ(t, contig[50:52], "--")
	expect.EQ(t, contig[:50], string(refSeq[:50]))
	expect.EQ(t, contig[52:], string(refSeq[50:]))

	a, b := lay.Reads[0], lay.Reads[1]
	// A's own insertion satisfies the full ledger width: zero excess.
	expect.EQ(t, a.Seq.GapTotal(), PosType(0))
	expect.EQ(t, a.Begin, PosType(0))
	expect.EQ(t, a.End, PosType(100))
	expect.EQ(t, a.Seq.ViewLen(), PosType(100))
	// B receives the full width at local offset 30.
	expect.EQ(t, b.Seq.GapTotal(), PosType(2))
	expect.EQ(t, string(b.Seq.Bytes()[30:32]), "--")
	expect.EQ(t, b.Begin, PosType(20))
	expect.EQ(t, b.End, PosType(102))
}

func TestMonotonicShift(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	recs := []*sam.Record{
		newTestRecord("ins", 100, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 50),
			sam.NewCigarOp(sam.CigarInsertion, 3),
			sam.NewCigarOp(sam.CigarMatch, 10),
		}),
		newTestRecord("right", 160, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 20)}),
		newTestRecord("farRight", 180, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 20)}),
	}
	lay, err := BuildLayout(win, refSeq, recs)
	assert.NoError(t, err)

	right, farRight := lay.Reads[1], lay.Reads[2]
	expect.EQ(t, right.Begin, PosType(63))
	expect.EQ(t, right.End, PosType(83))
	expect.EQ(t, farRight.Begin, PosType(83))
	expect.EQ(t, farRight.End, PosType(103))
	expect.EQ(t, right.Seq.GapTotal(), PosType(0))
	// Relative order by Begin is preserved.
	expect.True(t, right.Begin < farRight.Begin)
}

// An insertion landing exactly at another read's leading edge repositions
// the read instead of inserting gaps; one landing at the trailing edge is
// dropped from that read but still materialized in the contig.
func TestEdgeExclusion(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))

	t.Run("leading", func(t *testing.T) {
		recs := []*sam.Record{
			newTestRecord("ins", 100, sam.Cigar{
				sam.NewCigarOp(sam.CigarMatch, 50),
				sam.NewCigarOp(sam.CigarInsertion, 2),
				sam.NewCigarOp(sam.CigarMatch, 10),
			}),
			newTestRecord("edge", 150, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 30)}),
		}
		lay, err := BuildLayout(win, refSeq, recs)
		assert.NoError(t, err)
		edge := lay.Reads[1]
		expect.EQ(t, edge.Seq.GapTotal(), PosType(0))
		expect.EQ(t, edge.Begin, PosType(52))
		expect.EQ(t, edge.End, PosType(82))
	})

	t.Run("trailing", func(t *testing.T) {
		recs := []*sam.Record{
			newTestRecord("trail", 100, sam.Cigar{
				sam.NewCigarOp(sam.CigarMatch, 50),
				sam.NewCigarOp(sam.CigarInsertion, 2),
			}),
			newTestRecord("left", 110, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 30)}),
		}
		lay, err := BuildLayout(win, refSeq, recs)
		assert.NoError(t, err)
		trail, left := lay.Reads[0], lay.Reads[1]
		// The trailing insertion is not materialized into any read...
		expect.EQ(t, trail.Seq.GapTotal(), PosType(0))
		expect.EQ(t, trail.End, PosType(50))
		expect.EQ(t, left.Seq.GapTotal(), PosType(0))
		// ...but the contig still carries its columns.
		expect.EQ(t, lay.Contig.ViewLen(), PosType(102))
	})
}

// Round-trip column count: the contig's gapped length equals the window
// length plus the sum of all ledger widths, with multiple insertion sites.
func TestRoundTripColumnCount(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	recs := []*sam.Record{
		newTestRecord("i1", 100, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 10),
			sam.NewCigarOp(sam.CigarInsertion, 3),
			sam.NewCigarOp(sam.CigarMatch, 30),
		}),
		newTestRecord("i2", 120, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 5),
			sam.NewCigarOp(sam.CigarInsertion, 2),
			sam.NewCigarOp(sam.CigarMatch, 20),
		}),
		// Same site as i1 but narrower: the ledger keeps the max.
		newTestRecord("i3", 105, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 5),
			sam.NewCigarOp(sam.CigarInsertion, 1),
			sam.NewCigarOp(sam.CigarMatch, 15),
		}),
	}
	lay, err := BuildLayout(win, refSeq, recs)
	assert.NoError(t, err)
	expect.EQ(t, lay.Contig.ViewLen(), PosType(100+3+2))
	expect.EQ(t, lay.Contig.SourceLen(), PosType(100))
}

// Reads and the contig must agree on the column of every reference base,
// including reads whose own insertions sit left of a projected site.
func TestSharedColumnConsistency(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	recs := []*sam.Record{
		newTestRecord("E", 100, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 10),
			sam.NewCigarOp(sam.CigarInsertion, 3),
			sam.NewCigarOp(sam.CigarMatch, 30),
		}),
		newTestRecord("F", 120, sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 5),
			sam.NewCigarOp(sam.CigarInsertion, 2),
			sam.NewCigarOp(sam.CigarMatch, 20),
		}),
	}
	lay, err := BuildLayout(win, refSeq, recs)
	assert.NoError(t, err)

	e, f := lay.Reads[0], lay.Reads[1]
	// Contig view of reference offset 25: shifted by both gap blocks.
	contigCol := lay.Contig.ViewPos(25)
	expect.EQ(t, contigCol, PosType(30))
	// E covers offset 25 at 25 own-insertion-adjusted columns past its
	// begin, plus the excess gaps projected into it.
	eCol := e.Begin + 25 + 3 + 2
	expect.EQ(t, eCol, contigCol)
	expect.EQ(t, e.Begin, PosType(0))
	expect.EQ(t, string(e.Seq.Bytes()[28:30]), "--")
	// F reaches offset 25 through its own two inserted bases.
	fCol := f.Begin + 5 + 2
	expect.EQ(t, fCol, contigCol)
	expect.EQ(t, f.Begin, PosType(23))
	expect.EQ(t, f.Seq.GapTotal(), PosType(0))
}

func TestMalformedRecordsSkipRegionContinues(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	bad := newTestRecord("bad", 100, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)})
	bad.Cigar = sam.Cigar{sam.NewCigarOp(sam.CigarBack, 10), sam.NewCigarOp(sam.CigarMatch, 50)}
	recs := []*sam.Record{
		bad,
		newTestRecord("good", 100, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 50)}),
	}
	lay, err := BuildLayout(win, refSeq, recs)
	assert.NoError(t, err)
	expect.EQ(t, lay.Skipped, 1)
	assert.EQ(t, len(lay.Reads), 1)
	expect.EQ(t, lay.Reads[0].Name, "good")
}

func TestEmptyWindow(t *testing.T) {
	win := testWindow(100, 200)
	refSeq := []byte(fakeSeq(100))
	lay, err := BuildLayout(win, refSeq, nil)
	assert.NoError(t, err)
	assert.EQ(t, len(lay.Reads), 0)
	expect.EQ(t, string(lay.Contig.Bytes()), string(refSeq))
}

func TestBuildLayoutRefLengthMismatch(t *testing.T) {
	win := testWindow(100, 200)
	_, err := BuildLayout(win, []byte(fakeSeq(99)), nil)
	expect.HasSubstr(t, err.Error(), "reference bases")
}
