// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
// Adapted as the entrypoint for the matching-statistics / SSS scanner.

// Package cmd implements the command-line interface, following
// lexicmap/cmd's cobra conventions (a package-level RootCmd, one file per
// subcommand, checkError for fatal aborts, getFlagXxx wrappers around
// cmd.Flags().GetXxx).
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// VERSION is the program version, set at build time in a full release.
var VERSION = "0.1.0"

var log = logging.MustGetLogger("")

func init() {
	var format = logging.MustStringFormatter(
		`%{color}[%{level:.4s}]%{color:reset} %{message}`,
	)
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	logging.SetBackend(backendFormatter)
}

// RootCmd is the base command every subcommand attaches to via init().
var RootCmd = &cobra.Command{
	Use:   "msrindex",
	Short: "compute matching statistics and sample-specific strings against a pre-built r-index",
	Long: `msrindex computes per-read matching statistics against a pre-built
r-index-with-thresholds and SLP text oracle, and derives sample-specific
strings (SSS) from the resulting length profile.
`,
}

func init() {
	RootCmd.PersistentFlags().BoolP("quiet", "Q", false, formatFlagUsage("Be quiet: suppress the progress bar and per-read debug log line."))
	RootCmd.PersistentFlags().StringP("log", "", "", formatFlagUsage("Log file (default stderr)."))
}

// Options holds the ambient run settings every subcommand derives from
// RootCmd's persistent flags, mirroring lexicmap/cmd's getOptions.
type Options struct {
	Verbose  bool
	LogFile  string
	Log2File bool
}

func getOptions(cmd *cobra.Command) *Options {
	logfile := getFlagString(cmd, "log")
	return &Options{
		Verbose:  !getFlagBool(cmd, "quiet"),
		LogFile:  logfile,
		Log2File: logfile != "",
	}
}

// addLog redirects the logging backend to logfile and returns the open
// handle so the caller can close it on exit, matching lexicmap/cmd's
// addLog/Log2File convention.
func addLog(logfile string, verbose bool) *os.File {
	fh, err := os.Create(logfile)
	checkError(err)

	var format = logging.MustStringFormatter(`[%{level:.4s}] %{message}`)
	backend := logging.NewLogBackend(fh, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	logging.SetBackend(backendFormatter)

	return fh
}

// Execute runs the configured command tree. It is called once from main.
func Execute() {
	RootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// checkError aborts the process with a formatted message if err is
// non-nil. Every subcommand's Run function funnels fatal errors through
// this single point, matching lexicmap/cmd's error-handling convention.
func checkError(err error) {
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func getFlagString(cmd *cobra.Command, flag string) string {
	value, err := cmd.Flags().GetString(flag)
	checkError(err)
	return value
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	value, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return value
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	value, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return value
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	value := getFlagInt(cmd, flag)
	if value <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be > 0", flag))
	}
	return value
}

func getFlagNonNegativeInt(cmd *cobra.Command, flag string) int {
	value := getFlagInt(cmd, flag)
	if value < 0 {
		checkError(fmt.Errorf("value of flag --%s should be >= 0", flag))
	}
	return value
}

// getFlagThreads mirrors lexicmap/cmd's getOptions: a 0-valued thread flag
// means "use all CPUs".
func getFlagThreads(cmd *cobra.Command, flag string) int {
	threads := getFlagNonNegativeInt(cmd, flag)
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	return threads
}

// formatFlagUsage wraps a flag's help text uniformly; lexicmap/cmd's
// version additionally wraps long lines to a fixed terminal width, which
// this tool's short, single-sentence flag descriptions never need.
func formatFlagUsage(s string) string {
	return s
}
