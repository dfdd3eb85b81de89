package scorecard

import (
	"github.com/pkg/errors"
)

// Metric identifies the per-bin statistic the scorecard is built from.
type Metric string

const (
	// MetricWoE is the weight of evidence metric, used for binary targets.
	MetricWoE Metric = "WoE"

	// MetricMean is the mean response metric, used for continuous targets.
	MetricMean Metric = "Mean"
)

// BinEntry is a single scorecard row: one bin of one variable.
// Points starts as Metric * Coefficient and is rewritten in place by the
// scaling, intercept normalization, and rounding passes.
type BinEntry struct {
	Variable    string  `json:"variable" yaml:"variable"`
	BinID       int     `json:"bin_id" yaml:"binId"`
	Bin         string  `json:"bin" yaml:"bin"`
	Metric      float64 `json:"metric" yaml:"metric"`
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
	Points      float64 `json:"points" yaml:"points"`
}

// Table is an assembled scorecard. Entries are grouped by variable,
// rows of a variable are contiguous, and bin ids are unique per variable.
type Table struct {
	Metric  Metric     `json:"metric" yaml:"metric"`
	Entries []BinEntry `json:"entries" yaml:"entries"`
}

// Variables returns the variable names in table order.
func (t *Table) Variables() []string {
	names := make([]string, 0)
	for _, g := range t.groups() {
		names = append(names, t.Entries[g[0]].Variable)
	}
	return names
}

// groups returns [start, end) index pairs, one per contiguous variable block.
func (t *Table) groups() [][2]int {
	ranges := make([][2]int, 0)
	start := 0
	for i := 1; i <= len(t.Entries); i++ {
		if i == len(t.Entries) || t.Entries[i].Variable != t.Entries[start].Variable {
			ranges = append(ranges, [2]int{start, i})
			start = i
		}
	}
	return ranges
}

// Points returns the point value assigned to a bin of a variable.
func (t *Table) Points(variable string, binID int) (float64, error) {
	for _, e := range t.Entries {
		if e.Variable == variable && e.BinID == binID {
			return e.Points, nil
		}
	}
	return 0, errors.Errorf("no bin %d for variable %q", binID, variable)
}

// SummaryRow is the reduced table row used by the summary view.
type SummaryRow struct {
	Variable string  `json:"variable" yaml:"variable"`
	Bin      string  `json:"bin" yaml:"bin"`
	Points   float64 `json:"points" yaml:"points"`
}

// Summary returns the condensed (Variable, Bin, Points) projection.
func (t *Table) Summary() []SummaryRow {
	rows := make([]SummaryRow, 0, len(t.Entries))
	for _, e := range t.Entries {
		rows = append(rows, SummaryRow{Variable: e.Variable, Bin: e.Bin, Points: e.Points})
	}
	return rows
}

// Score computes the total score for a single record given the selected
// bin id per variable. Every table variable must be present in bins.
func (t *Table) Score(bins map[string]int, intercept float64) (float64, error) {
	total := intercept
	for _, g := range t.groups() {
		variable := t.Entries[g[0]].Variable
		binID, ok := bins[variable]
		if !ok {
			return 0, errors.Errorf("missing bin selection for variable %q", variable)
		}
		found := false
		for i := g[0]; i < g[1]; i++ {
			if t.Entries[i].BinID == binID {
				total += t.Entries[i].Points
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Errorf("no bin %d for variable %q", binID, variable)
		}
	}
	return total, nil
}
