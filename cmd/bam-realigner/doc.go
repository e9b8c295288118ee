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

/*
Given a coordinate-sorted, indexed BAM or PAM, an indexed FASTA reference,
and a list of target regions, bam-realigner rebuilds each region's gapped
multiple-alignment layout: insertions reported by individual reads are
projected consistently across the reference window and every overlapping
read.  The resulting layout blocks are written as text, one per region.

Regions come from a BED file (-bed) or a single region string (-region),
and are extended symmetrically by -window-radius before loading.

Sample usage:
bam-realigner \
    -bed my-regions.bed \
    -out layouts.txt \
    my.bam \
    ref.fa
*/
package main
