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

// Package realign reconstructs a consistent gapped multiple-alignment
// layout for windows of a reference genome from independently
// CIGAR-aligned reads.
//
// Each read's CIGAR reports insertions relative to the reference in its
// own frame only.  To render all reads of a window together, every
// insertion must be projected into a shared coordinate system: the widest
// insertion observed at each reference position becomes a block of gap
// columns in the reference and in every overlapping read that does not
// carry its own bases there.  The package walks each read's CIGAR into an
// initial placement, accumulates per-position insertion requirements in a
// ledger, and projects the ledger in descending position order across an
// interval index of read spans, yielding a Layout: the gapped contig
// window plus every read's gapped sequence and span.
//
// Soft and hard clips are treated as opaque prefixes/suffixes, unmapped
// reads are excluded from placement, and mate positions are not updated
// after shifting.  Regions are independent: a Layout never shares state
// with another region, so callers may process regions concurrently.
package realign
