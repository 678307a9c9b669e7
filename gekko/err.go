package gekko

import (
	"strings"

	"github.com/ezrec/gekkoasm/translate"
)

var f = translate.From

// AssemblerError reports the first failure of an assembly pass, tagged with
// the zero-based line and column where it was detected. Len is the width of
// the offending region, which may be zero for errors at end of line.
type AssemblerError struct {
	Message    string
	SourceLine string
	Line       int
	Col        int
	Len        int
}

func (err AssemblerError) Error() string {
	return f("line %d:%d: %v", err.Line, err.Col, err.Message)
}

// Detail renders the error with the offending source line and a marker
// underneath the region it refers to.
func (err AssemblerError) Detail() string {
	line := strings.TrimRight(err.SourceLine, "\n")
	marker := strings.Repeat(" ", err.Col) + "^" + strings.Repeat("~", max(err.Len-1, 0))
	return err.Error() + "\n" + line + "\n" + marker
}

func (err AssemblerError) Is(other error) (ok bool) {
	_, ok = other.(AssemblerError)
	return
}
