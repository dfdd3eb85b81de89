package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/scorecraft/sctl/pkg/data"
)

var (
	binFlag = &cli.StringSliceFlag{
		Name:     "bin",
		Usage:    "Bin assignment as variable=bin_id (repeatable, one per scorecard variable)",
		Required: true,
	}

	scoreCmd = &cli.Command{
		Name:            "score",
		Aliases:         []string{"s"},
		Usage:           "Score a record against a stored scorecard",
		UsageText:       "sctl score --id <id> --bin age=1 --bin income=0",
		HideHelpCommand: true,
		Action:          cmdScoreRecord,
		Flags: []cli.Flag{
			idFlag,
			binFlag,
			formatFlag,
		},
	}
)

type scoreResult struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Bins  map[string]int `json:"bins" yaml:"bins"`
	Score float64        `json:"score" yaml:"score"`
}

func cmdScoreRecord(c *cli.Context) error {
	cfg := getConfig(c)

	s, err := data.GetScorecard(cfg.DB, c.String(idFlag.Name))
	if err != nil {
		return fmt.Errorf("loading scorecard: %w", err)
	}

	bins, err := parseBinAssignments(c.StringSlice(binFlag.Name))
	if err != nil {
		return err
	}

	score, err := s.Table.Score(bins, s.Intercept)
	if err != nil {
		return fmt.Errorf("scoring record: %w", err)
	}

	return encode(&scoreResult{
		ID:    s.ID,
		Name:  s.Name,
		Bins:  bins,
		Score: score,
	})
}

func parseBinAssignments(args []string) (map[string]int, error) {
	bins := make(map[string]int, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid bin assignment: %s, expected variable=bin_id", a)
		}
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid bin id in %s: %w", a, err)
		}
		bins[k] = id
	}
	return bins, nil
}
