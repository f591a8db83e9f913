package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"linkaudit/internal/store"
)

// RenderBroken prints every broken link with its source file as a console
// table and returns how many there were.
func RenderBroken(ctx context.Context, w io.Writer, s *store.Store) (int, error) {
	rows, err := s.BrokenDetails(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No broken links found.")
		return 0, nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Broken Links (%d found)", len(rows)))
	t.AppendHeader(table.Row{"Status", "Type", "Target", "Link Text", "Source File"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			statusOf(row.Link),
			strings.ToUpper(string(row.Type)),
			row.TargetURL,
			truncate(row.LinkText),
			row.FilePath,
		})
	}
	t.Render()
	return len(rows), nil
}
