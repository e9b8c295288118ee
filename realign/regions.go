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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio/interval"
	"github.com/klauspost/compress/gzip"
)

// readRegions parses a BED-style region list: one region per row, first
// three columns (contig, 0-based start, half-open end), remaining columns
// ignored.  Unlike a BED union, rows are kept separate and in file order,
// since each row becomes its own realignment window.
func readRegions(r io.Reader) ([]interval.Entry, error) {
	var entries []interval.Entry
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("realign.readRegions: line %d: %d columns, want >= 3", lineNo, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("realign.readRegions: line %d: bad start %q: %v", lineNo, fields[1], err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("realign.readRegions: line %d: bad end %q: %v", lineNo, fields[2], err)
		}
		if start < 0 || end <= start {
			return nil, fmt.Errorf("realign.readRegions: line %d: invalid interval [%d, %d)", lineNo, start, end)
		}
		entries = append(entries, interval.Entry{
			RefName: fields[0],
			Start0:  interval.PosType(start),
			End:     interval.PosType(end),
		})
	}
	return entries, scanner.Err()
}

// loadRegions returns the run's region list from either a single region
// string or a BED(.gz) path; exactly one of the two must be set.
func loadRegions(bedPath, region string) (entries []interval.Entry, err error) {
	if (bedPath == "") == (region == "") {
		return nil, fmt.Errorf("realign.loadRegions: exactly one of -bed and -region is required")
	}
	if region != "" {
		var entry interval.Entry
		if entry, err = interval.ParseRegionString(region); err != nil {
			return nil, err
		}
		return []interval.Entry{entry}, nil
	}
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, bedPath); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(bedPath) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, err
		}
	}
	return readRegions(reader)
}
