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
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/holtgrewe/bam-realigner/realign"
)

var (
	bedPath      = flag.String("bed", realign.DefaultOpts.BedPath, "Input BED path listing regions to realign; this xor -region required")
	region       = flag.String("region", realign.DefaultOpts.Region, "Region to realign, formatted as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; this xor -bed required")
	bamIndexPath = flag.String("index", realign.DefaultOpts.BamIndexPath, "Input BAM index path. Defaults to bampath + .bai")
	windowRadius = flag.Int("window-radius", realign.DefaultOpts.WindowRadius, "Symmetric extension applied to each region before loading, clamped at contig bounds")
	parallelism  = flag.Int("parallelism", realign.DefaultOpts.Parallelism, "Maximum number of regions processed simultaneously; 0 = runtime.NumCPU()")
	verbosity    = flag.Int("verbosity", realign.DefaultOpts.Verbosity, "Diagnostic detail level; does not affect output data")
	outPath      = flag.String("out", "", "Layout output path; empty writes to stdout")
)

func bamRealignerUsage() {
	fmt.Printf("Usage: %s [OPTIONS] {b,p}ampath fapath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bamRealignerUsage
	shutdown := grail.Init()
	defer shutdown()

	allArgs := flag.Args()
	nPositionalArgs := flag.NArg()
	positionalArgs := allArgs[len(allArgs)-nPositionalArgs:]
	if nPositionalArgs != 2 {
		if nPositionalArgs < 2 {
			log.Fatalf("Missing positional arguments ({b,p}ampath and fapath required); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		} else {
			log.Fatalf("Too many positional arguments (only {b,p}ampath and fapath expected); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		}
	}
	ctx := vcontext.Background()
	opts := realign.Opts{
		BedPath:      *bedPath,
		Region:       *region,
		BamIndexPath: *bamIndexPath,
		WindowRadius: *windowRadius,
		Parallelism:  *parallelism,
		Verbosity:    *verbosity,
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		outFile, err := file.Create(ctx, *outPath)
		if err != nil {
			log.Fatalf("Creating %s: %v", *outPath, err)
		}
		defer func() {
			if err := outFile.Close(ctx); err != nil {
				log.Fatalf("Closing %s: %v", *outPath, err)
			}
		}()
		out = outFile.Writer(ctx)
	}

	if err := realign.Realign(ctx, positionalArgs[0], positionalArgs[1], out, &opts); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
