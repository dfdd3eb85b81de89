package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/scorecraft/sctl/pkg/data"
)

const (
	styleSummary = "summary"
	styleDetail  = "detail"
)

var (
	styleFlag = &cli.StringFlag{
		Name:  "style",
		Usage: "Table style [summary, detail]",
		Value: styleSummary,
	}

	tableCmd = &cli.Command{
		Name:            "table",
		Aliases:         []string{"t"},
		Usage:           "Render a stored scorecard table",
		HideHelpCommand: true,
		Action:          cmdScorecardTable,
		Flags: []cli.Flag{
			idFlag,
			styleFlag,
		},
	}
)

func cmdScorecardTable(c *cli.Context) error {
	cfg := getConfig(c)

	s, err := data.GetScorecard(cfg.DB, c.String(idFlag.Name))
	if err != nil {
		return fmt.Errorf("loading scorecard: %w", err)
	}

	style := c.String(styleFlag.Name)
	if style != styleSummary && style != styleDetail {
		return fmt.Errorf("invalid table style: %s", style)
	}

	return writeScorecardTable(os.Stdout, s, style)
}

func writeScorecardTable(w io.Writer, s *data.Scorecard, style string) error {
	fmt.Fprintf(w, "%s (%s)\n", s.Name, s.ID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if style == styleDetail {
		fmt.Fprintf(tw, "VARIABLE\tBIN ID\tBIN\t%s\tCOEFFICIENT\tPOINTS\n", s.Table.Metric)
		for _, e := range s.Table.Entries {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%.4f\t%.4f\t%.4f\n",
				e.Variable, e.BinID, e.Bin, e.Metric, e.Coefficient, e.Points)
		}
	} else {
		fmt.Fprintln(tw, "VARIABLE\tBIN\tPOINTS")
		for _, e := range s.Table.Entries {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\n", e.Variable, e.Bin, e.Points)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "intercept: %.4f\n", s.Intercept)
	return err
}
