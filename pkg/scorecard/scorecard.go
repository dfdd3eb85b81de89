package scorecard

import (
	"github.com/pkg/errors"
)

// ErrNotFitted is returned when a scorecard is used before Fit.
var ErrNotFitted = errors.New("scorecard is not fitted")

// Estimator is the linear model collaborator. Implementations expose
// their fitted weights through the accessors rather than being probed
// for attributes.
type Estimator interface {
	Fit(x [][]float64, y []float64) error
	Predict(x [][]float64) []float64
	Coefficients() []float64
	Intercept() float64
}

// Binner is the fitted binning collaborator: it enumerates the selected
// variables with their per-bin metrics and maps raw values to bins.
type Binner interface {
	// Variables returns the selected variable names, in model order.
	Variables() []string

	// Tables returns the per-variable bin metadata, in Variables order.
	Tables() []VariableBins

	// BinIndex returns the bin id a raw value of the variable falls into.
	BinIndex(variable string, value float64) (int, error)
}

// Scorecard builds and applies a point-based scorecard from a binning
// collaborator and a linear estimator.
type Scorecard struct {
	binner    Binner
	estimator Estimator
	metric    Metric
	opts      Options

	result *Result
}

// New creates an unfitted scorecard. Use MetricWoE for a binary target
// and MetricMean for a continuous one.
func New(binner Binner, estimator Estimator, metric Metric, opts Options) *Scorecard {
	return &Scorecard{binner: binner, estimator: estimator, metric: metric, opts: opts}
}

// Fit transforms the raw feature columns through the binner into metric
// space, fits the estimator on the transformed matrix, and assembles the
// scorecard table from the fitted coefficients.
func (s *Scorecard) Fit(x map[string][]float64, y []float64) error {
	design, err := s.transform(x)
	if err != nil {
		return err
	}
	if len(design) != len(y) {
		return errors.Errorf("got %d samples and %d targets", len(design), len(y))
	}

	if err := s.estimator.Fit(design, y); err != nil {
		return errors.Wrap(err, "fitting estimator")
	}

	coefs := s.estimator.Coefficients()
	res, err := Build(s.binner.Tables(), coefs, s.estimator.Intercept(), s.metric, s.opts)
	if err != nil {
		return err
	}
	s.result = res
	return nil
}

// Predict runs the estimator over binner-transformed input.
func (s *Scorecard) Predict(x map[string][]float64) ([]float64, error) {
	if s.result == nil {
		return nil, ErrNotFitted
	}
	design, err := s.transform(x)
	if err != nil {
		return nil, err
	}
	return s.estimator.Predict(design), nil
}

// Score computes the scorecard score for each record: the sum of the
// selected bin's points per variable plus the intercept.
func (s *Scorecard) Score(x map[string][]float64) ([]float64, error) {
	if s.result == nil {
		return nil, ErrNotFitted
	}

	variables := s.binner.Variables()
	n, err := columnLength(x, variables)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, n)
	for i := range scores {
		bins := make(map[string]int, len(variables))
		for _, v := range variables {
			id, err := s.binner.BinIndex(v, x[v][i])
			if err != nil {
				return nil, errors.Wrapf(err, "binning record %d", i)
			}
			bins[v] = id
		}
		total, err := s.result.Table.Score(bins, s.result.Intercept)
		if err != nil {
			return nil, err
		}
		scores[i] = total
	}
	return scores, nil
}

// Table returns the assembled scorecard table.
func (s *Scorecard) Table() (*Table, error) {
	if s.result == nil {
		return nil, ErrNotFitted
	}
	return s.result.Table, nil
}

// Intercept returns the scorecard intercept term.
func (s *Scorecard) Intercept() (float64, error) {
	if s.result == nil {
		return 0, ErrNotFitted
	}
	return s.result.Intercept, nil
}

// RoundStatus reports the rounding outcome, empty when rounding was off.
func (s *Scorecard) RoundStatus() (RoundStatus, error) {
	if s.result == nil {
		return "", ErrNotFitted
	}
	return s.result.RoundStatus, nil
}

// transform maps raw feature columns to the per-bin metric values the
// estimator is trained on.
func (s *Scorecard) transform(x map[string][]float64) ([][]float64, error) {
	variables := s.binner.Variables()
	n, err := columnLength(x, variables)
	if err != nil {
		return nil, err
	}

	metrics := make(map[string]map[int]float64, len(variables))
	for _, vb := range s.binner.Tables() {
		m := make(map[int]float64, len(vb.Bins))
		for _, b := range vb.Bins {
			m[b.ID] = b.Metric
		}
		metrics[vb.Variable] = m
	}

	design := make([][]float64, n)
	for i := range design {
		row := make([]float64, len(variables))
		for j, v := range variables {
			id, err := s.binner.BinIndex(v, x[v][i])
			if err != nil {
				return nil, errors.Wrapf(err, "binning record %d", i)
			}
			metric, ok := metrics[v][id]
			if !ok {
				return nil, errors.Errorf("binner returned unknown bin %d for variable %q", id, v)
			}
			row[j] = metric
		}
		design[i] = row
	}
	return design, nil
}

func columnLength(x map[string][]float64, variables []string) (int, error) {
	n := -1
	for _, v := range variables {
		col, ok := x[v]
		if !ok {
			return 0, errors.Errorf("missing column for variable %q", v)
		}
		if n >= 0 && len(col) != n {
			return 0, errors.Errorf("column %q has %d values, want %d", v, len(col), n)
		}
		n = len(col)
	}
	return n, nil
}
