package preprocessor

import (
	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders the change from existing to rendered for path.
func unifiedDiff(path, existing, rendered string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(existing),
		B:        difflib.SplitLines(rendered),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", wrapProcessError(KindIO, err, "cannot diff %s", path)
	}
	return text, nil
}
