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
	"sort"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func spanRead(name string, begin, end PosType) *PlacedRead {
	return &PlacedRead{
		Name:      name,
		Begin:     begin,
		End:       end,
		initBegin: begin,
		initEnd:   end,
	}
}

func TestOverlapIndex(t *testing.T) {
	reads := []*PlacedRead{
		spanRead("a", 0, 50),
		spanRead("b", 30, 80),
		spanRead("c", 50, 60),
		spanRead("empty", 70, 70), // never indexed
	}
	idx, err := newOverlapIndex(reads)
	assert.NoError(t, err)

	at := func(pos PosType) []int {
		ids := idx.at(pos)
		sort.Ints(ids)
		return ids
	}
	expect.EQ(t, at(0), []int{0})
	expect.EQ(t, at(29), []int{0})
	expect.EQ(t, at(30), []int{0, 1})
	expect.EQ(t, at(49), []int{0, 1})
	// Spans are half-open: a ends at 50, c starts there.
	expect.EQ(t, at(50), []int{1, 2})
	expect.EQ(t, at(70), []int{1})
	expect.EQ(t, at(80), []int(nil))
	expect.EQ(t, at(200), []int(nil))
}

func TestOverlapIndexQueriesInitialSpans(t *testing.T) {
	reads := []*PlacedRead{spanRead("a", 10, 40)}
	idx, err := newOverlapIndex(reads)
	assert.NoError(t, err)

	// Projection moves the current placement; lookups must keep using the
	// initial span.
	reads[0].Begin += 5
	reads[0].End += 5
	expect.EQ(t, idx.at(12), []int{0})
	expect.EQ(t, idx.at(42), []int(nil))
}
