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
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	gbam "github.com/grailbio/bio/encoding/bam"
	"github.com/grailbio/bio/encoding/bamprovider"
	"github.com/grailbio/bio/encoding/fasta"
	"github.com/grailbio/bio/interval"
	"github.com/grailbio/hts/sam"
)

// Opts mirrors the command-line options.
type Opts struct {
	// BedPath lists the regions to realign; mutually exclusive with Region.
	BedPath string
	// Region is a single region string ("chr1:1000-2000").
	Region string
	// BamIndexPath overrides the BAM index location (default bampath+".bai").
	BamIndexPath string
	// WindowRadius is the symmetric extension applied to each region before
	// loading, clamped at the contig bounds.
	WindowRadius int
	// Parallelism is the number of regions processed simultaneously; each
	// region owns all of its state, so fanning out is safe.  0 means
	// runtime.NumCPU().
	Parallelism int
	// Verbosity raises diagnostic detail; it never changes output data.
	Verbosity int
}

// DefaultOpts holds the flag defaults.
var DefaultOpts = Opts{
	WindowRadius: 100,
	Parallelism:  1,
	Verbosity:    1,
}

// BuildLayout runs the layout core for one window: every record's CIGAR is
// walked into an initial placement, insertion requirements are accumulated
// into the gap ledger, and the ledger is projected across all reads and
// the contig.  refSeq must be the ungapped reference sequence of exactly
// [win.Begin, win.End).
//
// Records with malformed CIGARs are counted and skipped; mapped records
// that consume no reference are recorded as unaligned.  Any other failure
// aborts the region, leaving no state behind: the returned Layout is the
// only artifact.
func BuildLayout(win Window, refSeq []byte, recs []*sam.Record) (*Layout, error) {
	if PosType(len(refSeq)) != win.Len() {
		return nil, fmt.Errorf("realign.BuildLayout: window %s wants %d reference bases, got %d",
			win, win.Len(), len(refSeq))
	}
	lay := &Layout{Window: win, Contig: NewGappedSeq(refSeq)}
	ledger := make(refGapLedger)
	for _, rec := range recs {
		pr, err := walkCigar(rec, win)
		if err != nil {
			if errors.Is(err, ErrMalformedCigar) {
				log.Printf("realign: region %s: skipping read: %v", win, err)
				lay.Skipped++
				continue
			}
			return nil, err
		}
		if pr.initEnd <= pr.initBegin {
			lay.Unaligned = append(lay.Unaligned, pr.Name)
			continue
		}
		for _, ins := range pr.inserts {
			ledger.record(ins.refOff, ins.width)
		}
		lay.Reads = append(lay.Reads, pr)
	}
	idx, err := newOverlapIndex(lay.Reads)
	if err != nil {
		return nil, err
	}
	if err := projectGaps(lay, ledger, idx); err != nil {
		return nil, err
	}
	log.Debug.Printf("realign: region %s: %d reads placed, %d gap columns at %d offsets",
		win, len(lay.Reads), ledger.totalWidth(), len(ledger))
	return lay, nil
}

// processRegion loads one region's alignments and reference window and
// builds its layout.  Loading grows the window to every overlapping
// record's extent, so the reference is fetched after the alignments.
// faMu serializes reference fetches: indexed FASTA readers share an
// internal buffer.
func processRegion(provider bamprovider.Provider, header *sam.Header, fa fasta.Fasta,
	faMu *sync.Mutex, entry interval.Entry, opts *Opts) (*Layout, error) {
	var ref *sam.Reference
	for _, r := range header.Refs() {
		if r.Name() == entry.RefName {
			ref = r
			break
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("realign: region %s:%d-%d: contig not in BAM/PAM header: %w",
			entry.RefName, entry.Start0+1, entry.End, ErrUnknownContig)
	}
	win := Window{Ref: ref, Begin: entry.Start0, End: entry.End}
	if limit := PosType(ref.Len()); win.End > limit {
		win.End = limit
	}
	win.extendRadius(PosType(opts.WindowRadius))

	iter := provider.NewIterator(gbam.Shard{
		StartRef: ref,
		EndRef:   ref,
		Start:    int(win.Begin),
		End:      int(win.End),
	})
	var (
		recs      []*sam.Record
		unaligned []string
	)
	for iter.Scan() {
		rec := iter.Record()
		if rec.Flags&sam.Unmapped != 0 {
			unaligned = append(unaligned, rec.Name)
			continue
		}
		win.extendRecord(rec)
		recs = append(recs, rec)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("realign: region %s: reading alignments: %v: %w", win, err, ErrIndexLookup)
	}
	if len(recs) == 0 {
		log.Printf("realign: warning: no alignments in region %s", win)
	}
	if opts.Verbosity >= 2 {
		log.Printf("realign: region %s: %d alignments, %d unmapped", win, len(recs), len(unaligned))
	}

	faMu.Lock()
	refSeq, err := fa.Get(ref.Name(), uint64(win.Begin), uint64(win.End))
	faMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("realign: region %s: reference window: %v: %w", win, err, ErrIndexLookup)
	}

	lay, err := BuildLayout(win, []byte(refSeq), recs)
	if err != nil {
		return nil, err
	}
	lay.Unaligned = append(unaligned, lay.Unaligned...)
	return lay, nil
}

func openFasta(ctx context.Context, fapath string) (fasta.Fasta, func(), error) {
	infile, err := file.Open(ctx, fapath)
	if err != nil {
		return nil, nil, err
	}
	faiFile, err := file.Open(ctx, fapath+".fai")
	if err != nil {
		_ = infile.Close(ctx)
		return nil, nil, fmt.Errorf("realign: opening FASTA index: %v: %w", err, ErrIndexLookup)
	}
	fa, err := fasta.NewIndexed(infile.Reader(ctx), faiFile.Reader(ctx))
	if cerr := faiFile.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = infile.Close(ctx)
		return nil, nil, fmt.Errorf("realign: indexed FASTA %s: %v: %w", fapath, err, ErrIndexLookup)
	}
	cleanup := func() {
		if cerr := infile.Close(ctx); cerr != nil {
			log.Error.Printf("realign: closing %s: %v", fapath, cerr)
		}
	}
	return fa, cleanup, nil
}

// Realign processes every region against the given BAM/PAM and indexed
// FASTA, writing each resulting layout to out in region order.  A nil out
// discards the layouts.  Region-level failures are logged and reported in
// the summary error; an unknown contig aborts the whole run immediately.
func Realign(ctx context.Context, xampath, fapath string, out io.Writer, opts *Opts) (err error) {
	provider := bamprovider.NewProvider(xampath, bamprovider.ProviderOpts{Index: opts.BamIndexPath})
	defer func() {
		if cerr := provider.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	header, err := provider.GetHeader()
	if err != nil {
		return err
	}
	regions, err := loadRegions(opts.BedPath, opts.Region)
	if err != nil {
		return err
	}
	if len(regions) == 0 {
		log.Printf("realign: warning: empty region list")
		return nil
	}
	fa, faCleanup, err := openFasta(ctx, fapath)
	if err != nil {
		return err
	}
	defer faCleanup()

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(regions) {
		parallelism = len(regions)
	}

	layouts := make([]*Layout, len(regions))
	regionErrs := make([]error, len(regions))
	var faMu sync.Mutex
	err = traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(regions)) / parallelism
		endIdx := ((jobIdx + 1) * len(regions)) / parallelism
		for i := startIdx; i < endIdx; i++ {
			entry := regions[i]
			if opts.Verbosity >= 1 {
				log.Printf("realign: processing (#%d) %s:%d-%d", i+1, entry.RefName, entry.Start0+1, entry.End)
			}
			lay, e := processRegion(provider, header, fa, &faMu, entry, opts)
			if e != nil {
				if errors.Is(e, ErrUnknownContig) {
					return e
				}
				log.Error.Printf("realign: %v", e)
				regionErrs[i] = e
				continue
			}
			layouts[i] = lay
		}
		return nil
	})
	if err != nil {
		return err
	}

	var firstErr error
	nFailed := 0
	for i, lay := range layouts {
		if lay == nil {
			nFailed++
			if firstErr == nil {
				firstErr = regionErrs[i]
			}
			continue
		}
		if out != nil {
			if e := WriteLayout(out, lay); e != nil {
				return e
			}
		}
	}
	if nFailed > 0 {
		return fmt.Errorf("realign.Realign: %d of %d regions failed: %w", nFailed, len(regions), firstErr)
	}
	return nil
}
