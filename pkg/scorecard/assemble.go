package scorecard

import (
	"github.com/pkg/errors"
)

// Bin is one discretized range or category of a variable, carrying the
// aggregated metric value computed by the binning collaborator.
type Bin struct {
	ID     int     `json:"id" yaml:"id"`
	Label  string  `json:"label" yaml:"label"`
	Metric float64 `json:"metric" yaml:"metric"`
}

// VariableBins is the ordered bin list of one selected variable.
type VariableBins struct {
	Variable string `json:"variable" yaml:"variable"`
	Bins     []Bin  `json:"bins" yaml:"bins"`
}

// Options configure scorecard assembly.
type Options struct {
	// Scaling is the point scaling policy; nil keeps raw points.
	Scaling Scaling

	// InterceptBased rebases every variable so its minimum bin scores
	// zero, folding the offsets into the returned intercept.
	InterceptBased bool

	// ReverseScorecard flips the sign convention so a higher raw score
	// maps to a higher (rather than lower) scaled score.
	ReverseScorecard bool

	// Rounding converts the final points to integers.
	Rounding bool

	// RoundBudget caps the bound-preserving rounding search, in visited
	// nodes. Zero means DefaultRoundBudget.
	RoundBudget int
}

// Result is an assembled scorecard: the table, the scalar intercept to
// add to every record's points sum, and the rounding outcome when
// rounding was requested.
type Result struct {
	Table       *Table      `json:"table" yaml:"table"`
	Intercept   float64     `json:"intercept" yaml:"intercept"`
	RoundStatus RoundStatus `json:"round_status,omitempty" yaml:"roundStatus,omitempty"`
}

// Build assembles the final scorecard from the fitted binning metadata,
// one model coefficient per variable, and the model intercept.
//
// The passes run in a fixed order: scale, then intercept normalization,
// then rounding. Rounding without a scaling policy is supported and uses
// independent nearest-integer rounding, since raw points carry no global
// range to preserve.
func Build(vars []VariableBins, coefs []float64, intercept float64, metric Metric, opts Options) (*Result, error) {
	if err := validateBuild(vars, coefs, intercept, metric, opts); err != nil {
		return nil, err
	}

	t := &Table{Metric: metric}
	for i, v := range vars {
		for _, b := range v.Bins {
			t.Entries = append(t.Entries, BinEntry{
				Variable:    v.Variable,
				BinID:       b.ID,
				Bin:         b.Label,
				Metric:      b.Metric,
				Coefficient: coefs[i],
				Points:      b.Metric * coefs[i],
			})
		}
	}

	if err := scalePoints(t, opts.Scaling, intercept, opts.ReverseScorecard); err != nil {
		return nil, err
	}

	// Once a scaling policy runs, the model intercept is folded into the
	// scaled points and the exported intercept starts from zero.
	out := intercept
	if opts.Scaling != nil {
		out = 0
	}

	res := &Result{Table: t}
	if opts.InterceptBased {
		out += normalizeIntercept(t)
	}
	res.Intercept = out

	if opts.Rounding {
		rr := roundPoints(t, opts.Scaling, res.Intercept, opts.RoundBudget)
		for i := range t.Entries {
			t.Entries[i].Points = rr.Points[i]
		}
		res.RoundStatus = rr.Status
	}

	return res, nil
}

func validateBuild(vars []VariableBins, coefs []float64, intercept float64, metric Metric, opts Options) error {
	if len(vars) == 0 {
		return errors.New("at least one variable is required")
	}
	if len(coefs) != len(vars) {
		return errors.Errorf("got %d coefficients for %d variables", len(coefs), len(vars))
	}
	if metric != MetricWoE && metric != MetricMean {
		return errors.Errorf("unsupported metric: %q", metric)
	}
	if !isFinite(intercept) {
		return errors.Errorf("intercept must be finite; got %v", intercept)
	}

	if opts.Scaling != nil {
		if err := opts.Scaling.Validate(); err != nil {
			return err
		}
		if _, ok := opts.Scaling.(PdoOdds); ok && metric == MetricMean {
			return errors.New("pdo_odds scaling is not supported for a continuous target")
		}
	}

	for i, v := range vars {
		if v.Variable == "" {
			return errors.Errorf("variable %d has no name", i)
		}
		if len(v.Bins) == 0 {
			return errors.Errorf("variable %q has no bins", v.Variable)
		}
		if !isFinite(coefs[i]) {
			return errors.Errorf("coefficient for variable %q must be finite; got %v", v.Variable, coefs[i])
		}
		seen := make(map[int]bool, len(v.Bins))
		for _, b := range v.Bins {
			if seen[b.ID] {
				return errors.Errorf("duplicate bin id %d for variable %q", b.ID, v.Variable)
			}
			seen[b.ID] = true
			if !isFinite(b.Metric) {
				return errors.Errorf("metric for variable %q bin %d must be finite; got %v", v.Variable, b.ID, b.Metric)
			}
		}
	}
	return nil
}
