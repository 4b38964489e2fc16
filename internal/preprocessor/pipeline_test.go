package preprocessor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tacogips/cpre/internal/expr"
	"github.com/tacogips/cpre/internal/model"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (r *recordingLogger) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, msg)
}

func (r *recordingLogger) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func (r *recordingLogger) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

type fixture struct {
	t   *testing.T
	dir string
	p   *Preprocessor
	log *recordingLogger
}

func newFixture(t *testing.T, opts Options, globals map[string]expr.Value) *fixture {
	t.Helper()
	log := &recordingLogger{}
	p, err := New(opts, NewGlobals(globals), log)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &fixture{t: t, dir: t.TempDir(), p: p, log: log}
}

func (f *fixture) write(name, content string) string {
	f.t.Helper()
	path := filepath.Join(f.dir, "src", name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		f.t.Fatal(err)
	}
	return path
}

func (f *fixture) descriptor(name string) *model.FileDescriptor {
	return model.NewFileDescriptor(filepath.Join(f.dir, "src", name), filepath.Join(f.dir, "out", name), false)
}

// process writes src as name, runs both passes and returns the destination content.
func (f *fixture) process(name, src string) (string, *FileResult, error) {
	f.t.Helper()
	f.write(name, src)
	res, err := f.p.ProcessFile(context.Background(), f.descriptor(name))
	if err != nil {
		return "", nil, err
	}
	data, readErr := os.ReadFile(filepath.Join(f.dir, "out", name))
	if readErr != nil && !os.IsNotExist(readErr) {
		f.t.Fatal(readErr)
	}
	return string(data), res, nil
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func TestProcess_Output(t *testing.T) {
	tests := []struct {
		name    string
		globals map[string]expr.Value
		input   string
		want    string
	}{
		{
			name:  "if false else",
			input: lines("//#if false", "kept=no", "//#else", "kept=yes", "//#endif"),
			want:  "kept=yes\n",
		},
		{
			name: "nested conditionals",
			input: lines(
				"a",
				"//#if true",
				"b",
				"//#if false",
				"c",
				"//#if true",
				"d",
				"//#else",
				"e",
				"//#endif",
				"//#else",
				"f",
				"//#endif",
				"g",
				"//#endif",
				"h",
			),
			want: lines("a", "b", "f", "g", "h"),
		},
		{
			name: "else inside skipped branch keeps the outer branch skipped",
			input: lines(
				"//#if false",
				"//#if true",
				"x",
				"//#else",
				"y",
				"//#endif",
				"//#endif",
				"z",
			),
			want: "z\n",
		},
		{
			name:    "ifdef and ifndef",
			globals: map[string]expr.Value{"debug": expr.Bool(true)},
			input:   lines("//#ifdef DEBUG", "dbg", "//#endif", "//#ifndef debug", "nodbg", "//#endif", "//#ifdefined missing", "m", "//#endif"),
			want:    "dbg\n",
		},
		{
			name: "loop with break resumes after end",
			input: lines(
				"//#local i = 3",
				"//#while true",
				"//#if i == 0",
				"//#break",
				"//#endif",
				"line /*$i$*/",
				"//#local i = i - 1",
				"//#end",
				"after",
			),
			want: lines("line 3", "line 2", "line 1", "after"),
		},
		{
			name: "loop with false re-entry runs once",
			input: lines(
				"//#local run = true",
				"//#while run",
				"body",
				"//#local run = false",
				"//#end",
				"done",
			),
			want: lines("body", "done"),
		},
		{
			name: "loop never entered skips nested loops",
			input: lines(
				"//#while false",
				"//#while true",
				"inner",
				"//#end",
				"outer",
				"//#end",
				"done",
			),
			want: "done\n",
		},
		{
			name: "continue",
			input: lines(
				"//#local i = 0",
				"//#while i < 3",
				"//#local i = i + 1",
				"//#if i == 2",
				"//#continue",
				"//#endif",
				"v/*$i$*/",
				"//#end",
			),
			want: lines("v1", "v3"),
		},
		{
			name:    "macros",
			globals: map[string]expr.Value{"name": expr.String("abc"), "n": expr.Int(2)},
			input:   lines(`value = "/*$name$*/"; // /*$n * 21$*/`, "a/*$$*/b", "keep /*$ open"),
			want:    lines(`value = "abc"; // 42`, "ab", "keep /*$ open"),
		},
		{
			name:  "skipped regions are not expanded",
			input: lines("//#if false", "/*$undefined_variable$*/", "//#endif", "ok"),
			want:  "ok\n",
		},
		{
			name:    "uncomment lines",
			globals: map[string]expr.Value{"v": expr.Int(5)},
			input:   lines("  //$int x = /*$v$*/;", "  //$$raw /*$v$*/"),
			want:    lines("  int x = 5;", "  raw /*$v$*/"),
		},
		{
			name:  "tail remover",
			input: lines("code(); /*-*/ removed"),
			want:  "code(); \n",
		},
		{
			name:  "comment next line",
			input: lines("//#//", "  foo", "bar"),
			want:  lines("//  foo", "bar"),
		},
		{
			name:  "text output toggle",
			input: lines("a", "//#-", "hidden", "//#+", "b"),
			want:  lines("a", "b"),
		},
		{
			name: "prefix and postfix sections",
			input: lines(
				"body1",
				"//#postfix+",
				"tail",
				"//#postfix-",
				"//#prefix+",
				"head",
				"//#prefix-",
				"body2",
			),
			want: lines("head", "body1", "body2", "tail"),
		},
		{
			name:  "exitif stops processing",
			input: lines("a", "//#if true", "//#exitif 1 < 2", "//#endif", "b"),
			want:  "a\n",
		},
		{
			name:  "define and undefine",
			input: lines("//#define feature", "//#ifdef feature", "on", "//#endif", "//#undefine feature", "//#ifdef feature", "still", "//#endif"),
			want:  "on\n",
		},
		{
			name:  "definel with value",
			input: lines(`//#definel greeting = "hi " + upper("x")`, "/*$greeting$*/"),
			want:  "hi X\n",
		},
		{
			name:  "no trailing newline is preserved",
			input: "a\nb",
			want:  "a\nb",
		},
		{
			name:  "crlf is preserved",
			input: "a\r\n//#if false\r\nb\r\n//#endif\r\nc\r\n",
			want:  "a\r\nc\r\n",
		},
		{
			name:  "special variables",
			input: lines("/*$__filename$*/:/*$__line$*/"),
			want:  "File.java:1\n",
		},
		{
			name:  "global pass conditionals",
			input: lines("//#_if false", "//#global g = 1", "//#_else", "//#global g = 2", "//#_endif", "g=/*$g$*/"),
			want:  "g=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{ContentStableWrite: true}, tt.globals)
			got, _, err := f.process("File.java", tt.input)
			if err != nil {
				t.Fatalf("process error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProcess_Failures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ErrorKind
		wantLine int
		wantMsg  string
	}{
		{
			name:     "unterminated if",
			input:    lines("a", "//#if true", "b"),
			wantKind: KindStructural,
			wantLine: 2,
			wantMsg:  "unclosed //#if",
		},
		{
			name:     "unterminated while",
			input:    lines("//#while false", "x"),
			wantKind: KindStructural,
			wantLine: 1,
			wantMsg:  "unclosed //#while",
		},
		{
			name:     "unterminated global if",
			input:    lines("//#_if true"),
			wantKind: KindStructural,
			wantLine: 1,
			wantMsg:  "unclosed //#_if",
		},
		{
			name:     "else without if",
			input:    lines("x", "//#else"),
			wantKind: KindStructural,
			wantLine: 2,
			wantMsg:  "//#else without //#if",
		},
		{
			name:     "end without while",
			input:    lines("//#end"),
			wantKind: KindStructural,
			wantLine: 1,
		},
		{
			name:     "break without while",
			input:    lines("//#break"),
			wantKind: KindStructural,
			wantLine: 1,
		},
		{
			name:     "unknown directive",
			input:    lines("ok", "ok", "//#nosuch thing"),
			wantKind: KindUnknownDirective,
			wantLine: 3,
		},
		{
			name:     "missing expression",
			input:    lines("//#if"),
			wantKind: KindUsage,
			wantLine: 1,
			wantMsg:  "needs an expression",
		},
		{
			name:     "type mismatch",
			input:    lines("//#if 1 + 1"),
			wantKind: KindEvaluation,
			wantLine: 1,
			wantMsg:  "expected bool result",
		},
		{
			name:     "unknown variable in macro",
			input:    lines("x = /*$nope$*/"),
			wantKind: KindEvaluation,
			wantLine: 1,
			wantMsg:  `unknown variable "nope"`,
		},
		{
			name:     "error directive",
			input:    lines("//#error stop here"),
			wantKind: KindAborted,
			wantLine: 1,
			wantMsg:  "stop here",
		},
		{
			name:     "bad assignment",
			input:    lines("//#local 1x = 2"),
			wantKind: KindUsage,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{}, nil)
			_, _, err := f.process("A.java", tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ProcessError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a ProcessError: %v", err, err)
			}
			if pe.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v (%v)", pe.Kind, tt.wantKind, err)
			}
			loc := pe.Location()
			if filepath.Base(loc.Path) != "A.java" || loc.Line != tt.wantLine {
				t.Errorf("Location() = %v, want A.java:%d", loc, tt.wantLine)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestProcess_ExitInsideConditionalIsNotUnbalanced(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	got, _, err := f.process("a.txt", lines("//#if true", "a", "//#exit", "//#endif", "b"))
	if err != nil {
		t.Fatalf("process error = %v", err)
	}
	if got != "a\n" {
		t.Errorf("output = %q", got)
	}
}

func TestProcess_DeferredExclusion(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantExcluded bool
	}{
		{name: "true excludes", input: lines("//#excludeif skip", "text"), wantExcluded: true},
		{name: "false keeps", input: lines("//#excludeif !skip", "text")},
		{name: "inside false global branch is ignored", input: lines("//#_if false", "//#excludeif true", "//#_endif", "text")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{}, map[string]expr.Value{"skip": expr.Bool(true)})
			got, res, err := f.process("a.txt", tt.input)
			if err != nil {
				t.Fatalf("process error = %v", err)
			}
			if res.Excluded != tt.wantExcluded || res.File.Excluded != tt.wantExcluded {
				t.Errorf("Excluded = %v/%v, want %v", res.Excluded, res.File.Excluded, tt.wantExcluded)
			}
			if tt.wantExcluded {
				if got != "" || res.Emit != nil {
					t.Errorf("excluded file produced output %q", got)
				}
			} else if got != "text\n" {
				t.Errorf("output = %q", got)
			}
		})
	}
}

func TestProcess_ExclusionConditionError(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	_, _, err := f.process("a.txt", lines("x", "//#excludeif undefined_thing"))
	if !IsKind(err, KindEvaluation) {
		t.Fatalf("error = %v, want evaluation", err)
	}
	var pe *ProcessError
	errors.As(err, &pe)
	if pe.Location().Line != 2 {
		t.Errorf("Location() = %v", pe.Location())
	}
}

func TestProcess_GlobalsAndLocalsAcrossFiles(t *testing.T) {
	f := newFixture(t, Options{}, nil)

	if _, _, err := f.process("a.txt", lines("//#global shared = \"from a\"", "//#local mine = 1", "//#define flag")); err != nil {
		t.Fatal(err)
	}
	got, _, err := f.process("b.txt", lines("/*$shared$*/", "//#ifdef mine", "leak", "//#endif", "//#ifdef flag", "flag", "//#endif"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(lines("from a", "flag"), got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_ContentStableWrite(t *testing.T) {
	f := newFixture(t, Options{ContentStableWrite: true}, nil)
	src := lines("stable")

	_, first, err := f.process("a.txt", src)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Emit.Written {
		t.Fatal("first run must write")
	}

	dest := filepath.Join(f.dir, "out", "a.txt")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(dest, old, old); err != nil {
		t.Fatal(err)
	}

	_, second, err := f.process("a.txt", src)
	if err != nil {
		t.Fatal(err)
	}
	if second.Emit.Written || !second.Emit.Unchanged {
		t.Errorf("second run = %+v, want unchanged", second.Emit)
	}
	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime changed: %v != %v", info.ModTime(), old)
	}

	_, third, err := f.process("a.txt", lines("changed"))
	if err != nil {
		t.Fatal(err)
	}
	if !third.Emit.Written {
		t.Error("changed content must be written")
	}
}

func TestProcess_UnconditionalWrite(t *testing.T) {
	f := newFixture(t, Options{ContentStableWrite: false}, nil)
	for i := 0; i < 2; i++ {
		_, res, err := f.process("a.txt", "same\n")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Emit.Written {
			t.Errorf("run %d: unconditional write must always write", i)
		}
	}
}

func TestProcess_DestinationDirectives(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	other := filepath.Join(f.dir, "other")
	src := lines(`//#outdir "`+filepath.ToSlash(other)+`"`, `//#outname "Renamed.java"`, "content")

	f.write("a.txt", src)
	fd := f.descriptor("a.txt")
	res, err := f.p.ProcessFile(context.Background(), fd)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(other, "Renamed.java")
	if res.Emit.Path != want {
		t.Errorf("Path = %q, want %q", res.Emit.Path, want)
	}
	if data, err := os.ReadFile(want); err != nil || string(data) != "content\n" {
		t.Errorf("read %q: %q, %v", want, data, err)
	}
	if fd.DestName != "a.txt" {
		t.Errorf("descriptor mutated: %+v", fd)
	}

	_, res, err = f.process("b.txt", lines("//#outenabled false", "content"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Emit.Disabled || res.Emit.Written {
		t.Errorf("Emit = %+v, want disabled", res.Emit)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "out", "b.txt")); !os.IsNotExist(err) {
		t.Error("disabled output must not be written")
	}
}

func TestProcess_Include(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	f.write("inc/part.txt", lines("part /*$__filename$*/", "//#local fromInclude = 1"))

	got, _, err := f.process("main.txt", lines("start", `//#include "inc/part.txt"`, "end /*$fromInclude$*/"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(lines("start", "part part.txt", "end 1"), got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_IncludeErrorsCarryFrames(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	f.write("bad.txt", lines("ok", "//#if"))

	_, _, err := f.process("main.txt", lines("a", `//#include "bad.txt"`))
	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v", err)
	}
	if len(pe.Frames) != 2 {
		t.Fatalf("Frames = %v, want 2 frames", pe.Frames)
	}
	if filepath.Base(pe.Frames[0].Path) != "main.txt" || pe.Frames[0].Line != 2 {
		t.Errorf("outer frame = %v", pe.Frames[0])
	}
	if filepath.Base(pe.Frames[1].Path) != "bad.txt" || pe.Frames[1].Line != 2 {
		t.Errorf("inner frame = %v", pe.Frames[1])
	}
	if !strings.Contains(err.Error(), "bad.txt:2: ") || !strings.Contains(err.Error(), "(included from ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestProcess_IncludeLimits(t *testing.T) {
	t.Run("circular", func(t *testing.T) {
		f := newFixture(t, Options{}, nil)
		f.write("loop.txt", lines(`//#include "main.txt"`))
		_, _, err := f.process("main.txt", lines(`//#include "loop.txt"`))
		if !IsKind(err, KindStructural) || !strings.Contains(err.Error(), "circular include") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("depth", func(t *testing.T) {
		f := newFixture(t, Options{MaxIncludeDepth: 1}, nil)
		f.write("one.txt", lines(`//#include "two.txt"`))
		f.write("two.txt", lines("deep"))
		_, _, err := f.process("main.txt", lines(`//#include "one.txt"`))
		if !IsKind(err, KindStructural) || !strings.Contains(err.Error(), "maximum include depth") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t, Options{}, nil)
		_, _, err := f.process("main.txt", lines(`//#include "absent.txt"`))
		if !IsKind(err, KindIO) {
			t.Errorf("error = %v, want io", err)
		}
	})
}

func TestProcess_EvalFile(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	f.write("part.txt", "hi /*$who$*/")

	got, _, err := f.process("main.txt", lines(`//#local who = "there"`, `/*$evalfile("part.txt")$*/!`))
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi there!\n" {
		t.Errorf("output = %q", got)
	}
	if _, ok := f.p.Globals().Lookup("who"); ok {
		t.Error("caller locals must not leak into globals")
	}
}

func TestProcess_EvalFileFailurePropagates(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	f.write("broken.txt", lines("//#if true"))

	_, _, err := f.process("main.txt", lines(`/*$evalfile("broken.txt")$*/`))
	if !IsKind(err, KindEvaluation) {
		t.Fatalf("error = %v, want evaluation", err)
	}
	var evalErr *expr.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatal("cause must be an EvalError")
	}
	var nested *ProcessError
	if !errors.As(evalErr, &nested) || nested.Kind != KindStructural {
		t.Errorf("nested failure not propagated: %v", err)
	}
}

func TestProcess_EvalFileRecursionIsBounded(t *testing.T) {
	f := newFixture(t, Options{MaxIncludeDepth: 3}, nil)
	_, _, err := f.process("self.txt", lines(`/*$evalfile("self.txt")$*/`))
	if !IsKind(err, KindEvaluation) || !strings.Contains(err.Error(), "evalfile nesting exceeds 3") {
		t.Errorf("error = %v", err)
	}
}

func TestProcess_Messages(t *testing.T) {
	f := newFixture(t, Options{}, map[string]expr.Value{"v": expr.Int(7)})
	_, _, err := f.process("a.txt", lines("//#msg value /*$v$*/", "//#echo echoed", "//#warning careful", "//#if false", "//#msg hidden", "//#endif"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"value 7", "echoed"}, f.log.infos); diff != "" {
		t.Errorf("infos mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"careful"}, f.log.warns); diff != "" {
		t.Errorf("warns mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_Options(t *testing.T) {
	t.Run("strip comments", func(t *testing.T) {
		f := newFixture(t, Options{StripComments: true}, nil)
		got, _, err := f.process("a.java", lines("int a; // note", "/* block */int b;"))
		if err != nil {
			t.Fatal(err)
		}
		if got != lines("int a;", "int b;") {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("whitespace before prefix", func(t *testing.T) {
		f := newFixture(t, Options{AllowWhitespaceBeforePrefix: true}, nil)
		got, _, err := f.process("a.java", lines("// #if false", "no", "// #endif", "yes"))
		if err != nil {
			t.Fatal(err)
		}
		if got != "yes\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("dry run", func(t *testing.T) {
		f := newFixture(t, Options{DryRun: true}, nil)
		_, res, err := f.process("a.txt", lines("new"))
		if err != nil {
			t.Fatal(err)
		}
		if res.Emit.Written {
			t.Error("dry run must not write")
		}
		if !strings.Contains(res.Emit.Diff, "+new") {
			t.Errorf("Diff = %q", res.Emit.Diff)
		}
		if _, err := os.Stat(filepath.Join(f.dir, "out", "a.txt")); !os.IsNotExist(err) {
			t.Error("dry run created the destination")
		}
	})

	t.Run("preserve attributes", func(t *testing.T) {
		f := newFixture(t, Options{PreserveAttributes: true}, nil)
		src := f.write("run.sh", lines("echo hi"))
		when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := os.Chmod(src, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(src, when, when); err != nil {
			t.Fatal(err)
		}
		if _, err := f.p.ProcessFile(context.Background(), f.descriptor("run.sh")); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(filepath.Join(f.dir, "out", "run.sh"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0755 {
			t.Errorf("mode = %o", info.Mode().Perm())
		}
		if !info.ModTime().Equal(when) {
			t.Errorf("mtime = %v, want %v", info.ModTime(), when)
		}
	})
}

func TestProcessFile_WriteErrorCarriesSourceLocation(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	if err := os.WriteFile(filepath.Join(f.dir, "out"), []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := f.process("a.txt", lines("one", "two"))
	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ProcessError", err)
	}
	if pe.Kind != KindIO {
		t.Errorf("Kind = %v, want %v", pe.Kind, KindIO)
	}
	if got, want := pe.Location().Path, filepath.Join(f.dir, "src", "a.txt"); got != want {
		t.Errorf("Location().Path = %q, want %q", got, want)
	}
	if !strings.HasPrefix(err.Error(), filepath.Join(f.dir, "src", "a.txt")+":") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestProcessFile_Cancelled(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	f.write("a.txt", "x\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.p.ProcessFile(ctx, f.descriptor("a.txt")); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRender(t *testing.T) {
	f := newFixture(t, Options{}, nil)
	path := f.write("snippet.txt", lines("//#prefix+", "head", "//#prefix-", "x=/*$x$*/"))

	got, err := f.p.Render(path, map[string]expr.Value{"x": expr.Int(1)})
	if err != nil {
		t.Fatal(err)
	}
	if got != lines("head", "x=1") {
		t.Errorf("Render() = %q", got)
	}
}
