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

import "errors"

// Error kinds distinguishable by callers via errors.Is.  A malformed CIGAR
// skips the read; an index-lookup failure aborts the current region only;
// an unknown contig aborts the whole run, since it means the region list
// and the alignment file disagree about the reference.
var (
	ErrMalformedCigar = errors.New("malformed CIGAR")
	ErrUnknownContig  = errors.New("unknown contig")
	ErrIndexLookup    = errors.New("index lookup failed")
)
