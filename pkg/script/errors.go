package script

import (
	"fmt"
	"text/scanner"
)

// ParseError reports malformed script text or an unresolvable reference.
type ParseError struct {
	Line    int    // 1-based
	Col     int    // 1-based
	Command string // type name of the offending command, if known
	Msg     string
}

func (e *ParseError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Col, e.Command, e.Msg)
}

func errorAt(pos scanner.Position, command, format string, args ...any) *ParseError {
	return &ParseError{
		Line:    pos.Line,
		Col:     pos.Column,
		Command: command,
		Msg:     fmt.Sprintf(format, args...),
	}
}
