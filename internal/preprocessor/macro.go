package preprocessor

import "strings"

const (
	macroOpen   = "/*$"
	macroClose  = "$*/"
	tailRemover = "/*-*/"
)

// expandMacros replaces each /*$expr$*/ in line with the string form of expr.
// The empty marker /*$$*/ is removed. An opening marker without a closing one is left as is.
// Substituted text is not scanned again.
func (p *Preprocessor) expandMacros(st *State, line string) (string, error) {
	start := strings.Index(line, macroOpen)
	if start < 0 {
		return line, nil
	}

	var b strings.Builder
	rest := line
	for start >= 0 {
		end := strings.Index(rest[start+len(macroOpen):], macroClose)
		if end < 0 {
			break
		}
		src := rest[start+len(macroOpen) : start+len(macroOpen)+end]
		b.WriteString(rest[:start])
		if strings.TrimSpace(src) != "" {
			v, err := p.evaluator.Eval(src, st)
			if err != nil {
				return "", err
			}
			b.WriteString(v.String())
		}
		rest = rest[start+len(macroOpen)+end+len(macroClose):]
		start = strings.Index(rest, macroOpen)
	}
	b.WriteString(rest)
	return b.String(), nil
}

// removeTail drops everything from the first /*-*/ marker.
func removeTail(line string) string {
	if i := strings.Index(line, tailRemover); i >= 0 {
		return line[:i]
	}
	return line
}
