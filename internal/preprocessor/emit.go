package preprocessor

import (
	"os"

	"github.com/tacogips/cpre/internal/comments"
	"github.com/tacogips/cpre/internal/logger"
)

// EmitResult describes what happened to one destination file.
type EmitResult struct {
	// Path is the destination path.
	Path string
	// Written is true when the destination was (re)written.
	Written bool
	// Unchanged is true when the destination already held the rendered bytes.
	Unchanged bool
	// Disabled is true when //#outenabled turned writing off.
	Disabled bool
	// Size is the number of encoded bytes rendered.
	Size int
	// Diff is the unified diff against the existing destination (dry runs only).
	Diff string
}

// Emitter turns the output sections of a State into a destination file.
type Emitter struct {
	opts   Options
	writer Writer
	strip  func(string) string
}

// NewEmitter creates an Emitter. A nil writer selects the filesystem writer.
func NewEmitter(opts Options, writer Writer) *Emitter {
	if writer == nil {
		writer = NewFileWriter()
	}
	return &Emitter{opts: opts.withDefaults(), writer: writer, strip: comments.Strip}
}

// Emit assembles prefix, body and postfix, optionally strips comments, encodes the text
// and writes it unless content-stable writing finds the destination unchanged.
func (e *Emitter) Emit(st *State) (*EmitResult, error) {
	path := st.DestinationPath()
	result := &EmitResult{Path: path}

	if !st.OutputEnabled() {
		logger.Debug("[emit] output disabled for %s", path)
		result.Disabled = true
		return result, nil
	}

	text := st.Rendered()
	if e.opts.StripComments {
		text = e.strip(text)
	}
	data, err := e.opts.OutputCharset.Encode(text)
	if err != nil {
		return nil, wrapProcessError(KindIO, err, "cannot encode %s", path)
	}
	result.Size = len(data)

	if e.opts.DryRun {
		result.Unchanged = sameContent(path, data)
		if !result.Unchanged {
			existing := ""
			if raw, err := os.ReadFile(path); err == nil {
				if decoded, err := e.opts.OutputCharset.Decode(raw); err == nil {
					existing = decoded
				}
			}
			if result.Diff, err = unifiedDiff(path, existing, text); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	if e.opts.ContentStableWrite && sameContent(path, data) {
		logger.Debug("[emit] %s unchanged, skipping write", path)
		result.Unchanged = true
		return result, nil
	}

	mode := os.FileMode(0644)
	if e.opts.PreserveAttributes {
		if info, err := os.Stat(st.File().SourcePath); err == nil {
			mode = info.Mode().Perm()
		}
	}
	if err := e.writer.WriteFile(path, data, mode); err != nil {
		return nil, err
	}
	result.Written = true

	if e.opts.PreserveAttributes {
		copyAttributes(st.File().SourcePath, path)
	}
	return result, nil
}
