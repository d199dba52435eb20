package command

import (
	"fmt"
	"strings"

	"github.com/lowkit/sqlrunner/pkg/template"
)

// Insert writes one row into a table.
type Insert struct {
	Table string
	Set   []Assignment
}

var _ Command = (*Insert)(nil)

// Render builds INSERT INTO table (cols...) VALUES (placeholders...).
func (c *Insert) Render(params map[string]any, ph template.PlaceholderFunc) (*RenderResult, error) {
	if err := validIdent(c.Table); err != nil {
		return nil, err
	}
	if len(c.Set) == 0 {
		return nil, fmt.Errorf("insert into %s has no columns", c.Table)
	}

	columns := make([]string, len(c.Set))
	placeholders := make([]string, len(c.Set))
	res := &RenderResult{
		Args:  make([]any, len(c.Set)),
		Names: make([]string, len(c.Set)),
	}
	for i, a := range c.Set {
		if err := validIdent(a.Column); err != nil {
			return nil, err
		}
		columns[i] = a.Column
		placeholders[i] = ph(i + 1)
		res.Args[i], res.Names[i] = a.Value.resolve(params)
	}

	res.SQL = fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		c.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return res, nil
}
