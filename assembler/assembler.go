// Package assembler orchestrates the per-file pipeline: macro
// preprocessing, the two passes, and artifact creation. All mutable state
// of a single translation - tables, counters, image, diagnostics - lives
// in a Context that is created fresh for every source file.
package assembler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/w15tools/assembler/config"
	"github.com/w15tools/assembler/encoder"
	"github.com/w15tools/assembler/mem"
	"github.com/w15tools/assembler/parser"
)

// Stage is the driver's per-file state. Each stage transition is performed
// by the stage that just completed; StageFailed skips everything that
// remains for this file but never stops the run over later files.
type Stage int

const (
	StageStart Stage = iota
	StageParsingMacros
	StageFirstRun
	StageSecondRun
	StageCreateOutputs
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageParsingMacros:
		return "parsing_macros"
	case StageFirstRun:
		return "first_run"
	case StageSecondRun:
		return "second_run"
	case StageCreateOutputs:
		return "create_outputs"
	case StageFailed:
		return "failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Context carries the shared mutable state of one file's translation. It
// is discarded when the file is done; nothing leaks between files.
type Context struct {
	Stem      string
	Symbols   *parser.SymbolTable
	Macros    *parser.MacroTable
	Externals *parser.ExtTable
	Image     *mem.Image
	Errors    *parser.ErrorList
	Stage     Stage
}

// NewContext creates the per-file context with fresh tables and counters.
func NewContext(stem string) *Context {
	return &Context{
		Stem:      stem,
		Symbols:   parser.NewSymbolTable(),
		Macros:    parser.NewMacroTable(),
		Externals: parser.NewExtTable(),
		Image:     mem.NewImage(),
		Errors:    &parser.ErrorList{},
		Stage:     StageStart,
	}
}

// Assembler runs the pipeline over source file stems.
type Assembler struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

// New creates an assembler with the given configuration.
func New(cfg *config.Config) *Assembler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Assembler{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr}
}

// SetOutput redirects the assembler's console streams, mainly for tests.
func (a *Assembler) SetOutput(stdout, stderr io.Writer) {
	a.stdout = stdout
	a.stderr = stderr
}

// Run assembles every stem in order. Each file is processed to completion
// before the next begins; a failing file does not stop the run. The
// return value is the process exit code: 1 only when no stems were given.
func (a *Assembler) Run(stems []string) int {
	if len(stems) == 0 {
		fmt.Fprintf(a.stderr, "w15asm: error: %s\n", parser.ErrNoSourceFiles.Message())
		return 1
	}
	for _, stem := range stems {
		a.AssembleFile(stem)
	}
	return 0
}

// AssembleFile runs the full pipeline for one source stem and reports
// whether it succeeded.
func (a *Assembler) AssembleFile(stem string) bool {
	ctx := NewContext(stem)
	srcName := stem + ".as"

	src, err := os.ReadFile(srcName) // #nosec G304 -- user-provided source path
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: error: %s\n", srcName, parser.ErrCannotOpenSource.Message())
		return false
	}

	if a.cfg.Assemble.Verbose {
		fmt.Fprintf(a.stdout, "assembling %s\n", srcName)
	}

	ctx.Stage = StageParsingMacros
	pp := parser.NewPreprocessor(srcName, ctx.Macros, ctx.Errors)
	expanded, ok := pp.Expand(string(src))
	if !ok {
		ctx.Stage = StageFailed
		a.flushDiagnostics(ctx)
		return false
	}

	amName := a.artifactPath(stem, ".am")
	if err := os.WriteFile(amName, []byte(expanded), 0644); err != nil { // #nosec G306 -- generated source artifact
		ctx.Errors.Report(parser.Position{Filename: amName}, parser.ErrFileCreationFailed)
		ctx.Stage = StageFailed
		a.flushDiagnostics(ctx)
		return false
	}

	if a.cfg.Assemble.StopAfterPreprocess {
		a.flushDiagnostics(ctx)
		return true
	}

	ctx.Stage = StageFirstRun
	pass1 := parser.NewPass1(filepath.Base(amName), ctx.Symbols, ctx.Macros, ctx.Image, ctx.Errors)
	ok = pass1.Run(expanded)

	if ok {
		ctx.Image.FinalizeCounters()
		ok = ctx.Symbols.Finalize(ctx.Image.ICF(), ctx.Externals, filepath.Base(amName), ctx.Errors)
	}

	if ok {
		ctx.Stage = StageSecondRun
		ctx.Image.Alloc()
		pass2 := encoder.NewPass2(filepath.Base(amName), ctx.Symbols, ctx.Externals, ctx.Image, ctx.Errors)
		ok = pass2.Run(expanded)
	}

	if ok {
		ctx.Stage = StageCreateOutputs
		ok = a.createOutputs(ctx)
	}

	if !ok {
		ctx.Stage = StageFailed
	}

	if a.cfg.Assemble.DumpSymbols {
		fmt.Fprintln(a.stdout, ctx.Symbols.Dump())
	}
	if ok && a.cfg.Listing.Enabled {
		a.writeListing(ctx)
	}

	a.flushDiagnostics(ctx)
	return ok
}

// createOutputs writes the object file, plus the entries and externals
// files when the program has any. Artifacts are only ever written on the
// happy path.
func (a *Assembler) createOutputs(ctx *Context) bool {
	ok := a.writeArtifact(ctx, ".ob", func(w io.Writer) error {
		return encoder.WriteObjectFile(w, ctx.Image)
	})
	if ctx.Symbols.EntriesExist() {
		ok = a.writeArtifact(ctx, ".ent", func(w io.Writer) error {
			return encoder.WriteEntriesFile(w, ctx.Symbols)
		}) && ok
	}
	if ctx.Externals.HasRefs() {
		ok = a.writeArtifact(ctx, ".ext", func(w io.Writer) error {
			return encoder.WriteExternalsFile(w, ctx.Externals)
		}) && ok
	}
	return ok
}

// writeArtifact creates one output file and fills it with the writer
// function, releasing the handle on every path.
func (a *Assembler) writeArtifact(ctx *Context, ext string, fill func(io.Writer) error) bool {
	name := a.artifactPath(ctx.Stem, ext)
	f, err := os.Create(name) // #nosec G304 -- artifact path derived from user stem
	if err != nil {
		return ctx.Errors.Report(parser.Position{Filename: name}, parser.ErrFileCreationFailed)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(a.stderr, "warning: failed to close %s: %v\n", name, cerr)
		}
	}()
	if err := fill(f); err != nil {
		return ctx.Errors.Report(parser.Position{Filename: name}, parser.ErrFileCreationFailed)
	}
	return true
}

// writeListing dumps the memory image to the configured listing sink.
func (a *Assembler) writeListing(ctx *Context) {
	w := a.stdout
	if a.cfg.Listing.File != "" {
		f, err := os.Create(a.cfg.Listing.File) // #nosec G304 -- user-specified listing path
		if err != nil {
			fmt.Fprintf(a.stderr, "warning: cannot create listing file: %v\n", err)
			return
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				fmt.Fprintf(a.stderr, "warning: failed to close listing file: %v\n", cerr)
			}
		}()
		w = f
	}
	if _, err := io.WriteString(w, encoder.AnnotatedListing(ctx.Image)); err != nil {
		fmt.Fprintf(a.stderr, "warning: failed to write listing: %v\n", err)
	}
}

// flushDiagnostics prints the file's errors and warnings to stderr and,
// when enabled, appends them to the per-file log.
func (a *Assembler) flushDiagnostics(ctx *Context) {
	if len(ctx.Errors.Errors) == 0 && len(ctx.Errors.Warnings) == 0 {
		return
	}

	fmt.Fprint(a.stderr, ctx.Errors.Error())
	fmt.Fprint(a.stderr, ctx.Errors.PrintWarnings())

	if !a.cfg.Output.WriteLog {
		return
	}
	logName := a.logPath(ctx.Stem)
	f, err := os.OpenFile(logName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G302 G304 -- per-file diagnostic log
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: cannot open log file %s: %v\n", logName, err)
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(a.stderr, "warning: failed to close log file: %v\n", cerr)
		}
	}()
	fmt.Fprint(f, ctx.Errors.Error())
	fmt.Fprint(f, ctx.Errors.PrintWarnings())
}

// artifactPath places an output file next to the source stem, or in the
// configured output directory.
func (a *Assembler) artifactPath(stem, ext string) string {
	if a.cfg.Output.Dir == "" {
		return stem + ext
	}
	return filepath.Join(a.cfg.Output.Dir, filepath.Base(stem)+ext)
}

// logPath places the per-file log next to the source, or in the
// configured log directory.
func (a *Assembler) logPath(stem string) string {
	if a.cfg.Output.LogDir == "" {
		return stem + ".log"
	}
	return filepath.Join(a.cfg.Output.LogDir, filepath.Base(stem)+".log")
}
