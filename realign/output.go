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
	"bytes"
	"fmt"
	"io"
)

// WriteLayout renders one region's layout as a gapped multiple-alignment
// block: a header line, the gapped contig, then one line per placed read
// padded out to its begin column, with the read name trailing.  This is a
// diagnostic rendering, not an interchange format.
func WriteLayout(w io.Writer, lay *Layout) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, ">%s reads=%d unaligned=%d skipped=%d\n",
		lay.Window, len(lay.Reads), len(lay.Unaligned), lay.Skipped)
	bw.Write(lay.Contig.Bytes())
	bw.WriteByte('\n')
	for _, pr := range lay.Reads {
		bw.Write(bytes.Repeat([]byte{' '}, int(pr.Begin)))
		bw.Write(pr.Seq.Bytes())
		fmt.Fprintf(bw, "  %s\n", pr.Name)
	}
	return bw.Flush()
}
