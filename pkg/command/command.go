// Package command implements the structured query-authoring model: commands
// built field by field in a UI rather than written as SQL text. Every command
// renders itself into SQL plus ordered bind values, and execution is always
// parameterized regardless of the caller's binding preference.
package command

import (
	"fmt"

	"github.com/lowkit/sqlrunner/pkg/template"
)

// Command is a structured query definition.
type Command interface {
	// Render produces the executable SQL and the ordered bind values,
	// resolving parameter references against the request params.
	Render(params map[string]any, ph template.PlaceholderFunc) (*RenderResult, error)
}

// RenderResult is a rendered command.
type RenderResult struct {
	SQL string
	// Args are the bind values in placeholder order.
	Args []any
	// Names carries the originating parameter name per arg, empty string for
	// literal values. Used for bind error reporting.
	Names []string
}

// Source is where a bound value comes from: a literal supplied with the
// command, or a named request parameter resolved at render time.
type Source struct {
	param   string
	literal any
	isParam bool
}

// Param references a request parameter by name. Absent parameters resolve to
// nil, matching the permissive template semantics.
func Param(name string) Source {
	return Source{param: name, isParam: true}
}

// Literal wraps a fixed value.
func Literal(v any) Source {
	return Source{literal: v}
}

func (s Source) resolve(params map[string]any) (any, string) {
	if s.isParam {
		return params[s.param], s.param
	}
	return s.literal, ""
}

// Assignment pairs a column with its value source.
type Assignment struct {
	Column string
	Value  Source
}

// Condition is an equality filter on a column.
type Condition struct {
	Column string
	Value  Source
}

// validIdent accepts plain (optionally dot-qualified) SQL identifiers.
// Anything else is rejected instead of quoted: identifiers come from command
// definitions, not request parameters, and exotic names have no business
// here.
func validIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	lastDot := true
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch == '.':
			if lastDot {
				return fmt.Errorf("invalid identifier %q", name)
			}
			lastDot = true
		case ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z':
			lastDot = false
		case ch >= '0' && ch <= '9':
			if lastDot {
				return fmt.Errorf("invalid identifier %q", name)
			}
			lastDot = false
		default:
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	if lastDot {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}
