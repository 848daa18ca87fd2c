package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/w15tools/assembler/assembler"
	"github.com/w15tools/assembler/config"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		verbose     bool
		configPath  string
		outputDir   string
		listing     bool
		dumpSymbols bool
		preprocess  bool
		noLog       bool
	)

	rootCmd := &cobra.Command{
		Use:   "w15asm stem...",
		Short: "Two-pass assembler for the w15 15-bit word machine",
		Long: `w15asm assembles .as source files for the w15 machine. Each argument
names a source stem: for stem X the assembler reads X.as, writes the
macro-expanded X.am, and on success X.ob plus X.ent and X.ext when the
program exports entries or references externals.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if configPath != "" {
				cfg, err = config.LoadFrom(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			if verbose {
				cfg.Assemble.Verbose = true
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}
			if listing {
				cfg.Listing.Enabled = true
			}
			if dumpSymbols {
				cfg.Assemble.DumpSymbols = true
			}
			if preprocess {
				cfg.Assemble.StopAfterPreprocess = true
			}
			if noLog {
				cfg.Output.WriteLog = false
			}

			asm := assembler.New(cfg)
			if code := asm.Run(args); code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for output artifacts")
	rootCmd.Flags().BoolVar(&listing, "listing", false, "dump the memory image after a successful assembly")
	rootCmd.Flags().BoolVar(&dumpSymbols, "dump-symbols", false, "dump the symbol table after each file")
	rootCmd.Flags().BoolVar(&preprocess, "preprocess-only", false, "stop after writing the macro-expanded .am file")
	rootCmd.Flags().BoolVar(&noLog, "no-log", false, "do not write per-file diagnostic logs")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
