package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/presenter"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent earthquakes as a colour-coded table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON instead of a table")
	return cmd
}

type listOutput struct {
	EmptyState string          `json:"empty_state,omitempty"`
	Rows       []presenter.Row `json:"rows"`
}

func (a *app) runList(ctx context.Context, out io.Writer, asJSON bool) error {
	loader := a.newLoader(a.newMetrics(), nil)

	task, err := loader.Start(ctx)
	if err != nil {
		return err
	}
	result, err := task.Wait(ctx)
	if err != nil {
		return err
	}

	rows := presenter.New(a.cfg.Location).FormatRows(result.Earthquakes, nil)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listOutput{EmptyState: result.EmptyState(), Rows: rows})
	}
	printRows(out, result, rows)
	return nil
}

func printRows(out io.Writer, result domain.Result, rows []presenter.Row) {
	if result.Empty() {
		printEmptyState(out, result.EmptyState())
		return
	}
	fmt.Fprintln(out, renderTable(rows, -1))
}
