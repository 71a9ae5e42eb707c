// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
// Adapted into the ms subcommand of the matching-statistics / SSS scanner.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/refidx/msrindex/assemble"
	"github.com/refidx/msrindex/rindex"
	"github.com/refidx/msrindex/shard"
)

// msCmd is the single subcommand spec.md §6 defines: compute matching
// statistics and sample-specific strings for every read in -p/--patterns
// against the r-index rooted at the positional infile.
var msCmd = &cobra.Command{
	Use:   "ms [flags] infile",
	Short: "compute matching statistics and sample-specific strings",
	Long: `ms computes, for every read in -p/--patterns, its matching-statistics
arrays against the r-index-with-thresholds and SLP text oracle rooted at
infile, and derives sample-specific strings from the resulting length
profile.

Output artifacts are written alongside -p/--patterns, named
<patterns>_<basename(infile)>.{pointers,lengths,sss}.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
			defer fhLog.Close()
		}

		if len(args) == 0 {
			checkError(fmt.Errorf("infile is required"))
		}
		infile, err := homedir.Expand(args[0])
		checkError(err)

		patterns := getFlagString(cmd, "patterns")
		if patterns == "" {
			checkError(fmt.Errorf("flag -p/--patterns is required"))
		}
		patterns, err = homedir.Expand(patterns)
		checkError(err)

		shaped := getFlagBool(cmd, "shaped-slp")
		minMEMLen := uint64(getFlagNonNegativeInt(cmd, "min-mem-len"))
		threads := getFlagThreads(cmd, "threads")
		csv := getFlagBool(cmd, "csv")

		// -w/-s/-m/-f/-r are accepted for source-CLI compatibility but
		// consumed by nothing downstream, matching spec.md §6's
		// classification of these as inherited, inert knobs.
		_ = getFlagInt(cmd, "window")
		_ = getFlagBool(cmd, "store")
		_ = getFlagBool(cmd, "memo")
		_ = getFlagBool(cmd, "fasta")
		_ = getFlagBool(cmd, "rle")

		if opt.Verbose {
			log.Infof("loading index: %s", infile)
		}
		timeStart := time.Now()

		idx, err := rindex.Load(infile, shaped)
		checkError(errors.Wrapf(err, "loading index %s", infile))

		outPrefix := patterns + "_" + rindex.BaseName(infile)

		if opt.Verbose {
			log.Infof("scanning reads: %s", patterns)
		}
		res, err := shard.Run(idx, shard.Options{
			Patterns:  patterns,
			OutPrefix: outPrefix,
			Threads:   threads,
			MinMEMLen: minMEMLen,
			Verbose:   opt.Verbose,
		})
		checkError(errors.Wrapf(err, "scanning %s", patterns))

		if opt.Verbose {
			log.Infof("assembling %d shard(s) into %s.{pointers,lengths}", res.NShards, outPrefix)
		}
		checkError(errors.Wrap(assemble.Run(outPrefix, res.NShards), "assembling shard output"))

		if csv {
			printStatsCSV(os.Stdout, infile, patterns, res, time.Since(timeStart))
		}

		if opt.Verbose {
			log.Infof("done in %s", time.Since(timeStart))
		}
	},
}

// printStatsCSV implements the supplemented -c/--csv report (spec.md §2.3,
// SPEC_FULL.md §2.3): the original printed ad-hoc run statistics to stdout;
// here they're a CSV header line followed by one line of values: reads processed, SSS
// totals, the longest MEM seen, and the mean/stdev of each read's longest
// MEM length, via gonum.org/v1/gonum/stat.MeanStdDev.
func printStatsCSV(w *os.File, infile, patterns string, res shard.Result, elapsed time.Duration) {
	lens := make([]float64, len(res.MEMLens))
	for i, l := range res.MEMLens {
		lens[i] = float64(l)
	}
	var mean, stdev float64
	if len(lens) > 0 {
		mean, stdev = stat.MeanStdDev(lens, nil)
	}

	fmt.Fprintln(w, "infile,patterns,shards,reads,total_sss,distinct_sss,longest_mem,mean_mem_len,stdev_mem_len,seconds")
	fmt.Fprintf(w, "%s,%s,%d,%d,%d,%d,%d,%.4f,%.4f,%.4f\n",
		infile, patterns, res.NShards, res.Reads, res.TotalSSS, res.DistinctSSS,
		res.LongestMEM, mean, stdev, elapsed.Seconds())
}

func init() {
	RootCmd.AddCommand(msCmd)

	msCmd.Flags().StringP("patterns", "p", "", formatFlagUsage("FASTQ/FASTA file of reads to scan (required)."))
	msCmd.Flags().IntP("threads", "t", 0, formatFlagUsage("Number of worker shards (0 = all CPUs; forced to 1 for gzipped -p)."))
	msCmd.Flags().IntP("min-mem-len", "l", 25, formatFlagUsage("Minimum MEM length reported per read."))
	msCmd.Flags().BoolP("shaped-slp", "q", false, formatFlagUsage("Load the shaped (vs. plain) SLP text oracle."))
	msCmd.Flags().BoolP("csv", "c", false, formatFlagUsage("Print a run-statistics CSV line to stdout."))
	msCmd.Flags().IntP("window", "w", 0, formatFlagUsage("Window size (inherited, unconsumed)."))
	msCmd.Flags().BoolP("store", "s", false, formatFlagUsage("Store flag (inherited, unconsumed)."))
	msCmd.Flags().BoolP("memo", "m", false, formatFlagUsage("Memoize flag (inherited, unconsumed)."))
	msCmd.Flags().BoolP("fasta", "f", false, formatFlagUsage("Treat input as FASTA (inherited, unconsumed; format is auto-detected)."))
	msCmd.Flags().BoolP("rle", "r", false, formatFlagUsage("RLE output flag (inherited, unconsumed)."))
}
