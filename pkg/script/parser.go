package script

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/chazu/contour/pkg/sketch"
)

// parser turns script text into commands. It knows the generic command
// syntax only; entity construction is left to the registered rules.
type parser struct {
	s      scanner.Scanner
	tok    rune
	pos    scanner.Position
	lexErr *ParseError
	cmd    string // type name of the command being parsed
}

func newParser(src string) *parser {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.lexErr == nil {
			p.lexErr = errorAt(s.Position, p.cmd, "%s", msg)
		}
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.pos = p.s.Position
}

func (p *parser) text() string { return p.s.TokenText() }

// describe names the current token for error messages.
func (p *parser) describe() string {
	if p.tok == scanner.EOF {
		return "end of script"
	}
	return strconv.Quote(p.text())
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	if p.lexErr != nil {
		return p.lexErr
	}
	return errorAt(p.pos, p.cmd, format, args...)
}

func (p *parser) expect(tok rune) error {
	if p.tok != tok {
		return p.errorf("expected %s, found %s", scanner.TokenString(tok), p.describe())
	}
	p.next()
	return nil
}

// parseScript reads commands until the end of input. Commas or semicolons
// between commands are optional.
func (p *parser) parseScript() ([]sketch.Command, error) {
	var cmds []sketch.Command
	for p.tok != scanner.EOF {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
		if p.tok == ',' || p.tok == ';' {
			p.next()
		}
	}
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	return cmds, nil
}

// parseCommand reads
//
//	Type( label {, ref | , [vector]} [, layer name] {, key=value} )
func (p *parser) parseCommand() (sketch.Command, error) {
	p.cmd = ""
	if p.tok != scanner.Ident {
		return sketch.Command{}, p.errorf("expected command name, found %s", p.describe())
	}
	cmd := sketch.Command{
		Type:   p.text(),
		Line:   p.pos.Line,
		Col:    p.pos.Column,
		Params: sketch.NewParameters(),
	}
	p.cmd = cmd.Type
	p.next()
	if err := p.expect('('); err != nil {
		return cmd, err
	}
	if p.tok != scanner.Int {
		return cmd, p.errorf("expected label, found %s", p.describe())
	}
	label, err := strconv.Atoi(p.text())
	if err != nil {
		return cmd, p.errorf("bad label %s", p.describe())
	}
	cmd.Label = label
	p.next()

	inTail := false
	for p.tok == ',' {
		p.next()
		switch p.tok {
		case scanner.Int:
			if inTail {
				return cmd, p.errorf("label reference %s after layer or parameters", p.describe())
			}
			ref, err := strconv.Atoi(p.text())
			if err != nil {
				return cmd, p.errorf("bad label reference %s", p.describe())
			}
			cmd.Args = append(cmd.Args, sketch.RefArg(ref))
			p.next()

		case '[':
			if inTail {
				return cmd, p.errorf("vector argument after layer or parameters")
			}
			vs, err := p.parseVector()
			if err != nil {
				return cmd, err
			}
			cmd.Args = append(cmd.Args, sketch.VectorArg(vs...))

		case scanner.Ident:
			inTail = true
			key := p.text()
			p.next()
			if p.tok == '=' {
				p.next()
				if _, dup := cmd.Params.Get(key); dup {
					return cmd, p.errorf("parameter %q given twice", key)
				}
				v, err := p.parseValue()
				if err != nil {
					return cmd, err
				}
				cmd.Params.Set(key, v)
				continue
			}
			if key != "layer" {
				return cmd, p.errorf("expected '=' after %q, found %s", key, p.describe())
			}
			if cmd.Layer != "" {
				return cmd, p.errorf("layer given twice")
			}
			name, err := p.parseName()
			if err != nil {
				return cmd, err
			}
			cmd.Layer = name

		default:
			return cmd, p.errorf("unexpected %s in argument list", p.describe())
		}
	}
	if err := p.expect(')'); err != nil {
		return cmd, err
	}
	return cmd, nil
}

// parseName reads an identifier or a quoted string.
func (p *parser) parseName() (string, error) {
	switch p.tok {
	case scanner.Ident:
		name := p.text()
		p.next()
		return name, nil
	case scanner.String:
		name, err := strconv.Unquote(p.text())
		if err != nil {
			return "", p.errorf("bad string %s", p.describe())
		}
		p.next()
		return name, nil
	}
	return "", p.errorf("expected name, found %s", p.describe())
}

func (p *parser) parseNumber() (float64, error) {
	sign := 1.0
	switch p.tok {
	case '-':
		sign = -1
		p.next()
	case '+':
		p.next()
	}
	if p.tok != scanner.Int && p.tok != scanner.Float {
		return 0, p.errorf("expected number, found %s", p.describe())
	}
	v, err := strconv.ParseFloat(p.text(), 64)
	if err != nil {
		return 0, p.errorf("bad number %s", p.describe())
	}
	p.next()
	return sign * v, nil
}

// parseVector reads [n, n, ...]. The empty vector is allowed.
func (p *parser) parseVector() ([]float64, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	vs := []float64{}
	if p.tok == ']' {
		p.next()
		return vs, nil
	}
	for {
		v, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
		if p.tok != ',' {
			break
		}
		p.next()
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return vs, nil
}

// parseValue reads a parameter value.
func (p *parser) parseValue() (sketch.Value, error) {
	switch p.tok {
	case '[':
		vs, err := p.parseVector()
		if err != nil {
			return sketch.Value{}, err
		}
		return sketch.Vector(vs...), nil
	case '{':
		set, err := p.parseSet()
		if err != nil {
			return sketch.Value{}, err
		}
		return sketch.Set(set), nil
	case scanner.Ident, scanner.String:
		name, err := p.parseName()
		if err != nil {
			return sketch.Value{}, err
		}
		return sketch.Enum(name), nil
	}
	v, err := p.parseNumber()
	if err != nil {
		return sketch.Value{}, err
	}
	return sketch.Double(v), nil
}

// parseSet reads a nested parameter set: {key=value, ...}.
func (p *parser) parseSet() (*sketch.Parameters, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	set := sketch.NewParameters()
	for p.tok != '}' {
		if p.tok != scanner.Ident {
			return nil, p.errorf("expected parameter name, found %s", p.describe())
		}
		key := p.text()
		p.next()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		if _, dup := set.Get(key); dup {
			return nil, p.errorf("parameter %q given twice", key)
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		set.Set(key, v)
		if p.tok != ',' {
			break
		}
		p.next()
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return set, nil
}

// ParseCommands reads the generic command structure of src without
// constructing entities.
func ParseCommands(src string) ([]sketch.Command, error) {
	cmds, err := newParser(src).parseScript()
	if err != nil {
		return nil, err
	}
	return cmds, nil
}
