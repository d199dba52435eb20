package command

import (
	"fmt"
	"strings"

	"github.com/lowkit/sqlrunner/pkg/template"
)

// Delete removes the rows matching every filter condition.
type Delete struct {
	Table  string
	Filter []Condition
}

var _ Command = (*Delete)(nil)

// Render builds DELETE FROM table WHERE col = ph AND ...
func (c *Delete) Render(params map[string]any, ph template.PlaceholderFunc) (*RenderResult, error) {
	if err := validIdent(c.Table); err != nil {
		return nil, err
	}

	res := &RenderResult{}
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", c.Table)
	if len(c.Filter) > 0 {
		conds := make([]string, len(c.Filter))
		for i, f := range c.Filter {
			if err := validIdent(f.Column); err != nil {
				return nil, err
			}
			v, name := f.Value.resolve(params)
			res.Args = append(res.Args, v)
			res.Names = append(res.Names, name)
			conds[i] = f.Column + " = " + ph(i+1)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	res.SQL = b.String()
	return res, nil
}
