package command

import (
	"fmt"
	"strings"

	"github.com/lowkit/sqlrunner/pkg/template"
)

// Update modifies the rows matching every filter condition.
type Update struct {
	Table  string
	Set    []Assignment
	Filter []Condition
}

var _ Command = (*Update)(nil)

// Render builds UPDATE table SET col = ph, ... WHERE col = ph AND ...
// An empty filter updates every row; guarding against that is the authoring
// surface's job, not the renderer's.
func (c *Update) Render(params map[string]any, ph template.PlaceholderFunc) (*RenderResult, error) {
	if err := validIdent(c.Table); err != nil {
		return nil, err
	}
	if len(c.Set) == 0 {
		return nil, fmt.Errorf("update of %s has no assignments", c.Table)
	}

	res := &RenderResult{}
	index := 0
	next := func(source Source) string {
		index++
		v, name := source.resolve(params)
		res.Args = append(res.Args, v)
		res.Names = append(res.Names, name)
		return ph(index)
	}

	assigns := make([]string, len(c.Set))
	for i, a := range c.Set {
		if err := validIdent(a.Column); err != nil {
			return nil, err
		}
		assigns[i] = a.Column + " = " + next(a.Value)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", c.Table, strings.Join(assigns, ", "))
	if len(c.Filter) > 0 {
		conds := make([]string, len(c.Filter))
		for i, f := range c.Filter {
			if err := validIdent(f.Column); err != nil {
				return nil, err
			}
			conds[i] = f.Column + " = " + next(f.Value)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	res.SQL = b.String()
	return res, nil
}
