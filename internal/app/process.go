package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tacogips/cpre/internal/charset"
	"github.com/tacogips/cpre/internal/config"
	"github.com/tacogips/cpre/internal/discover"
	"github.com/tacogips/cpre/internal/logger"
	"github.com/tacogips/cpre/internal/model"
	"github.com/tacogips/cpre/internal/preprocessor"
)

// ProcessOptions contains options for a preprocessing run.
type ProcessOptions struct {
	// ConfigPath is the configuration file. Empty searches WorkDir for cpre.hcl or cpre.json.
	ConfigPath string
	// WorkDir is the directory searched for a configuration file. Empty means the current directory.
	WorkDir string
	// Overrides are command-line settings applied on top of the configuration.
	Overrides Overrides
	// Definitions are "name=expression" globals evaluated after the configured globals.
	Definitions []string
	// DryRun renders every file and reports differences without writing.
	DryRun bool
	// Log receives directive messages. Nil discards them.
	Log logger.Logger
}

// Overrides are optional command-line replacements for configuration fields.
// Nil pointers and empty values leave the configuration untouched.
type Overrides struct {
	Sources                     []string
	Destination                 string
	EncodingIn                  string
	EncodingOut                 string
	ContentStableWrite          *bool
	StripComments               *bool
	PreserveFileAttributes      *bool
	AllowWhitespaceBeforePrefix *bool
	CopyExcluded                *bool
	Workers                     int
}

// Apply writes the set overrides into cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if len(o.Sources) > 0 {
		cfg.Sources = o.Sources
	}
	if o.Destination != "" {
		cfg.Destination = o.Destination
	}
	if o.EncodingIn != "" {
		cfg.EncodingIn = o.EncodingIn
	}
	if o.EncodingOut != "" {
		cfg.EncodingOut = o.EncodingOut
	}
	applyBool(&cfg.ContentStableWrite, o.ContentStableWrite)
	applyBool(&cfg.StripComments, o.StripComments)
	applyBool(&cfg.PreserveFileAttributes, o.PreserveFileAttributes)
	applyBool(&cfg.AllowWhitespaceBeforePrefix, o.AllowWhitespaceBeforePrefix)
	applyBool(&cfg.CopyExcluded, o.CopyExcluded)
	if o.Workers != 0 {
		cfg.Workers = o.Workers
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// FileStatus is the outcome of one file of a run.
type FileStatus int

const (
	// StatusWritten means the destination was written.
	StatusWritten FileStatus = iota
	// StatusUnchanged means the destination already held the output.
	StatusUnchanged
	// StatusChanged means a dry run found the destination would change.
	StatusChanged
	// StatusDisabled means //#outenabled turned writing off.
	StatusDisabled
	// StatusExcluded means //#excludeif removed the file.
	StatusExcluded
	// StatusCopied means the file was copied without preprocessing.
	StatusCopied
	// StatusFailed means the file could not be processed.
	StatusFailed
)

// String returns the string representation of the status.
func (s FileStatus) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusDisabled:
		return "disabled"
	case StatusExcluded:
		return "excluded"
	case StatusCopied:
		return "copied"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult reports what happened to one file.
type FileResult struct {
	// File is the processed file.
	File *model.FileDescriptor
	// Status is the outcome.
	Status FileStatus
	// Destination is the path written, or that would be written.
	Destination string
	// Diff is the unified diff of a dry run.
	Diff string
	// Err is the failure of a StatusFailed file.
	Err error
}

// ProcessResult summarizes a run.
type ProcessResult struct {
	// Config is the effective configuration.
	Config *config.Config
	// Files holds one entry per discovered file: processed files first, then copied ones.
	Files []FileResult
	// Skipped counts files dropped by discovery.
	Skipped int
	// DryRun is true when nothing was written.
	DryRun bool
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Count returns the number of files with the given status.
func (r *ProcessResult) Count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the failed files.
func (r *ProcessResult) Failures() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err returns a ProcessFailed error when any file failed.
func (r *ProcessResult) Err() error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	return NewAppError(ProcessFailed, fmt.Sprintf("%d of %d files failed", len(failed), len(r.Files)), failed[0].Err)
}

// Process runs the preprocessor over every configured source directory.
// Global passes run sequentially in discovery order; main passes and copies run
// concurrently up to the configured number of workers. A failing file does not stop the others.
func Process(ctx context.Context, opts ProcessOptions) (*ProcessResult, error) {
	start := time.Now()
	logger.DebugSection("[app] Process workflow start")

	cfg, err := LoadConfig(opts.ConfigPath, opts.WorkDir)
	if err != nil {
		return nil, err
	}
	opts.Overrides.Apply(cfg)
	if err := config.Validate(cfg); err != nil {
		logger.Debug("[app] Configuration validation failed: %v", err)
		return nil, NewValidationError("invalid configuration", err)
	}
	logger.DebugJSON("[app] Effective configuration", cfg)

	in, err := charset.Lookup(cfg.EncodingIn)
	if err != nil {
		return nil, NewValidationError("invalid input encoding", err)
	}
	out, err := charset.Lookup(cfg.EncodingOut)
	if err != nil {
		return nil, NewValidationError("invalid output encoding", err)
	}

	for _, src := range cfg.Sources {
		if discover.IsUnder(src, cfg.Destination) {
			logger.Debug("[app] Destination %s is inside source %s and will not be walked", cfg.Destination, src)
		}
	}
	found, err := discover.Discover(ctx, discover.Options{
		Sources:            cfg.Sources,
		Destination:        cfg.Destination,
		ProcessExtensions:  cfg.ProcessExtensions,
		ExcludedExtensions: cfg.ExcludedExtensions,
		IgnorePatterns:     cfg.IgnorePatterns,
	})
	if err != nil {
		return nil, NewDiscoveryError("failed to discover source files", err)
	}

	log := opts.Log
	if log == nil {
		log = logger.Discard
	}
	pre, err := preprocessor.New(preprocessor.Options{
		InputCharset:                in,
		OutputCharset:               out,
		ContentStableWrite:          cfg.ContentStableWrite,
		StripComments:               cfg.StripComments,
		PreserveAttributes:          cfg.PreserveFileAttributes,
		AllowWhitespaceBeforePrefix: cfg.AllowWhitespaceBeforePrefix,
		MaxIncludeDepth:             cfg.MaxIncludeDepth,
		DryRun:                      opts.DryRun,
	}, preprocessor.NewGlobals(cfg.Globals), log)
	if err != nil {
		return nil, NewValidationError("failed to create preprocessor", err)
	}
	if err := ApplyDefinitions(pre.Globals(), pre.Evaluator(), opts.Definitions); err != nil {
		return nil, err
	}

	r := &runner{cfg: cfg, pre: pre, writer: preprocessor.NewFileWriter(), dryRun: opts.DryRun}
	files := r.run(ctx, found)

	result := &ProcessResult{
		Config:   cfg,
		Files:    files,
		Skipped:  found.Skipped,
		DryRun:   opts.DryRun,
		Duration: time.Since(start),
	}
	logger.Debug("[app] Process workflow completed: %d files, %d failed in %s",
		len(files), len(result.Failures()), result.Duration)
	return result, nil
}

// LoadConfig loads the configuration at path, or the one found in workDir, or defaults.
func LoadConfig(path, workDir string) (*config.Config, error) {
	loader := config.NewLoader()
	if path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, NewConfigLoadError("invalid configuration path", err)
		}
		cfg, err := loader.Load(expanded)
		if err != nil {
			return nil, NewConfigLoadError("failed to load configuration", err)
		}
		return cfg, nil
	}

	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, NewConfigLoadError("failed to get working directory", err)
		}
		workDir = wd
	}
	found := config.FindConfigFile(workDir)
	logger.DebugValue("[app] Configuration file", found)
	cfg, err := loader.LoadOrDefault(found)
	if err != nil {
		return nil, NewConfigLoadError("failed to load configuration", err)
	}
	return cfg, nil
}

type runner struct {
	cfg    *config.Config
	pre    *preprocessor.Preprocessor
	writer preprocessor.Writer
	dryRun bool
}

// pending is a file whose global pass succeeded and whose main pass is due.
type pending struct {
	index int
	state *preprocessor.State
}

func (r *runner) run(ctx context.Context, found *discover.Result) []FileResult {
	results := make([]FileResult, len(found.Process)+len(found.CopyOnly))
	var mains []pending
	var copies []int

	logger.DebugSection("[app] Global passes")
	for i, fd := range found.Process {
		results[i] = FileResult{File: fd, Destination: fd.DestinationPath()}
		if err := ctx.Err(); err != nil {
			results[i].fail(err)
			continue
		}
		st, err := r.pre.GlobalPass(fd)
		if err != nil {
			results[i].fail(err)
			continue
		}
		excluded, err := r.pre.ResolveExclusions(st)
		if err != nil {
			st.Dispose()
			results[i].fail(err)
			continue
		}
		if excluded {
			st.Dispose()
			if r.cfg.CopyExcluded {
				copies = append(copies, i)
			} else {
				results[i].Status = StatusExcluded
			}
			continue
		}
		mains = append(mains, pending{index: i, state: st})
	}

	for j, fd := range found.CopyOnly {
		i := len(found.Process) + j
		results[i] = FileResult{File: fd, Destination: fd.DestinationPath()}
		copies = append(copies, i)
	}

	logger.DebugSection("[app] Main passes")
	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for _, p := range mains {
		p := p
		if err := ctx.Err(); err != nil {
			p.state.Dispose()
			results[p.index].fail(err)
			continue
		}
		g.Go(func() error {
			r.mainPass(&results[p.index], p.state)
			return nil
		})
	}
	for _, i := range copies {
		i := i
		if err := ctx.Err(); err != nil {
			results[i].fail(err)
			continue
		}
		g.Go(func() error {
			r.copy(&results[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *runner) mainPass(res *FileResult, st *preprocessor.State) {
	emitted, err := r.pre.MainPass(st)
	if err != nil {
		res.fail(err)
		return
	}
	res.Destination = emitted.Path
	res.Diff = emitted.Diff
	switch {
	case emitted.Disabled:
		res.Status = StatusDisabled
	case emitted.Written:
		res.Status = StatusWritten
	case emitted.Unchanged:
		res.Status = StatusUnchanged
	default:
		res.Status = StatusChanged
	}
}

func (r *runner) copy(res *FileResult) {
	fd := res.File
	if r.dryRun {
		logger.Debug("[app] Dry run: not copying %s", fd.SourcePath)
		res.Status = StatusChanged
		return
	}
	written, err := preprocessor.CopyFile(r.writer, fd.SourcePath, fd.DestinationPath(),
		r.cfg.ContentStableWrite, r.cfg.PreserveFileAttributes)
	if err != nil {
		res.fail(err)
		return
	}
	if written {
		res.Status = StatusCopied
	} else {
		res.Status = StatusUnchanged
	}
}

func (f *FileResult) fail(err error) {
	logger.Debug("[app] %s failed: %v", f.File.SourcePath, err)
	f.Status = StatusFailed
	f.Err = err
}
