package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/scorecraft/sctl/pkg/data"
)

const queryResultLimitDefault = 100

var (
	idFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "Scorecard id",
		Required: true,
	}

	likeFlag = &cli.StringFlag{
		Name:  "like",
		Usage: "Fuzzy scorecard name search",
	}

	limitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of results returned",
		Value: queryResultLimitDefault,
	}

	listCmd = &cli.Command{
		Name:            "list",
		Aliases:         []string{"ls"},
		Usage:           "List stored scorecards",
		HideHelpCommand: true,
		Action:          cmdListScorecards,
		Flags: []cli.Flag{
			likeFlag,
			limitFlag,
			formatFlag,
		},
	}

	deleteCmd = &cli.Command{
		Name:            "delete",
		Aliases:         []string{"del"},
		Usage:           "Delete a stored scorecard",
		HideHelpCommand: true,
		Action:          cmdDeleteScorecard,
		Flags: []cli.Flag{
			idFlag,
		},
	}
)

func cmdListScorecards(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.QueryScorecards(cfg.DB, c.String(likeFlag.Name), c.Int(limitFlag.Name))
	if err != nil {
		return fmt.Errorf("listing scorecards: %w", err)
	}
	return encode(list)
}

func cmdDeleteScorecard(c *cli.Context) error {
	cfg := getConfig(c)

	id := c.String(idFlag.Name)
	if err := data.DeleteScorecard(cfg.DB, id); err != nil {
		return fmt.Errorf("deleting scorecard %s: %w", id, err)
	}
	return nil
}
