package scorecard

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDegenerateScale is returned when the achievable raw score range is
// zero, so no min/max scaling can be defined.
var ErrDegenerateScale = errors.New("degenerate scale: achievable score range is zero")

// Scaling is a point scaling policy. Exactly one concrete policy is in
// effect per scorecard; a nil Scaling means identity (raw points kept).
type Scaling interface {
	// Method returns the policy name used in configuration and storage.
	Method() string

	// Validate checks the policy parameters before any numeric work.
	Validate() error
}

// PdoOdds is the log-linear odds-to-points policy: a score of
// ScorecardPoints corresponds to odds Odds, and each doubling of the
// favorable odds moves the total score by PDO points.
type PdoOdds struct {
	PDO             float64 `json:"pdo" yaml:"pdo"`
	Odds            float64 `json:"odds" yaml:"odds"`
	ScorecardPoints float64 `json:"scorecard_points" yaml:"scorecardPoints"`
}

// Method implements Scaling.
func (PdoOdds) Method() string { return "pdo_odds" }

// Validate implements Scaling.
func (s PdoOdds) Validate() error {
	if !isFinite(s.PDO) || s.PDO <= 0 {
		return errors.Errorf("pdo must be a positive number; got %v", s.PDO)
	}
	if !isFinite(s.Odds) || s.Odds <= 0 {
		return errors.Errorf("odds must be a positive number; got %v", s.Odds)
	}
	if !isFinite(s.ScorecardPoints) || s.ScorecardPoints <= 0 {
		return errors.Errorf("scorecard_points must be a positive number; got %v", s.ScorecardPoints)
	}
	return nil
}

// MinMax is the affine policy: the achievable total score across all bin
// combinations spans exactly [Min, Max], independent of how many
// variables participate.
type MinMax struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Method implements Scaling.
func (MinMax) Method() string { return "min_max" }

// Validate implements Scaling.
func (s MinMax) Validate() error {
	if !isFinite(s.Min) || !isFinite(s.Max) {
		return errors.Errorf("min and max must be finite; got %v, %v", s.Min, s.Max)
	}
	if s.Min > s.Max {
		return errors.Errorf("min must be <= max; got %v > %v", s.Min, s.Max)
	}
	return nil
}

// scalePoints rewrites the table's raw points (metric * coefficient) onto
// the configured scale. The model intercept is folded into the scaled
// points, spread evenly across the n variables.
func scalePoints(t *Table, scaling Scaling, intercept float64, reverse bool) error {
	if scaling == nil {
		return nil
	}

	groups := t.groups()
	n := float64(len(groups))

	sense := 1.0
	if reverse {
		sense = -1.0
	}

	switch s := scaling.(type) {
	case PdoOdds:
		factor := s.PDO / math.Ln2
		offset := s.ScorecardPoints - factor*math.Log(s.Odds)
		for i := range t.Entries {
			p := t.Entries[i].Points
			t.Entries[i].Points = -(sense*p+intercept/n)*factor + offset/n
		}
	case MinMax:
		var minP, maxP float64
		for _, g := range groups {
			lo, hi := t.Entries[g[0]].Points, t.Entries[g[0]].Points
			for i := g[0] + 1; i < g[1]; i++ {
				lo = math.Min(lo, t.Entries[i].Points)
				hi = math.Max(hi, t.Entries[i].Points)
			}
			minP += lo
			maxP += hi
		}

		smin := intercept + minP
		smax := intercept + maxP
		if smax == smin {
			return ErrDegenerateScale
		}

		slope := sense * (s.Min - s.Max) / (smax - smin)
		shift := s.Max - slope*smin
		if reverse {
			shift = s.Min - slope*smin
		}

		base := shift + slope*intercept
		for i := range t.Entries {
			t.Entries[i].Points = base/n + slope*t.Entries[i].Points
		}
	default:
		return errors.Errorf("unsupported scaling method: %s", scaling.Method())
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
