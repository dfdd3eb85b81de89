package cli

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/scorecraft/sctl/pkg/config"
	"github.com/scorecraft/sctl/pkg/data"
	"github.com/scorecraft/sctl/pkg/scorecard"
)

var (
	modelFileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to the model definition file (YAML)",
		Required: true,
	}

	saveFlag = &cli.BoolFlag{
		Name:  "save",
		Usage: "Persist the built scorecard in the database",
	}

	nameOverrideFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Override the scorecard name from the model file",
	}

	buildCmd = &cli.Command{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "Build a scorecard from a model definition file",
		UsageText: `sctl build --file model.yaml               # build and print
   sctl build -f model.yaml --save            # build and persist
   sctl build -f model.yaml --name pd-2026q3  # build under a different name`,
		HideHelpCommand: true,
		Action:          cmdBuild,
		Flags: []cli.Flag{
			modelFileFlag,
			saveFlag,
			nameOverrideFlag,
			formatFlag,
		},
	}
)

func cmdBuild(c *cli.Context) error {
	m, err := config.Read(c.String(modelFileFlag.Name))
	if err != nil {
		return fmt.Errorf("reading model definition: %w", err)
	}

	res, err := m.Build()
	if err != nil {
		return fmt.Errorf("building scorecard: %w", err)
	}

	if res.RoundStatus == scorecard.RoundFallback {
		slog.Warn("bound-preserving rounding found no solution, points were rounded independently")
	}

	name := m.Name
	if v := c.String(nameOverrideFlag.Name); v != "" {
		name = v
	}

	policy, err := m.ScalingPolicy()
	if err != nil {
		return err
	}
	method := "none"
	if policy != nil {
		method = policy.Method()
	}

	out := &data.Scorecard{
		Name:        name,
		Method:      method,
		Intercept:   res.Intercept,
		RoundStatus: string(res.RoundStatus),
		Table:       res.Table,
	}

	if c.Bool(saveFlag.Name) {
		cfg := getConfig(c)
		if err := data.SaveScorecard(cfg.DB, out); err != nil {
			return fmt.Errorf("saving scorecard: %w", err)
		}
		slog.Info("scorecard saved", "id", out.ID, "name", out.Name)
	}

	return encode(out)
}
