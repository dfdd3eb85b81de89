package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/scorecraft/sctl/pkg/scorecard"
)

// Model is the on-disk definition of a fitted model export: per-variable
// bins with their metric values, one coefficient per variable, the model
// intercept, and the scorecard options.
type Model struct {
	Name             string     `yaml:"name"`
	Metric           string     `yaml:"metric"`
	Intercept        float64    `yaml:"intercept"`
	Scaling          *Scaling   `yaml:"scaling"`
	InterceptBased   bool       `yaml:"intercept_based"`
	ReverseScorecard bool       `yaml:"reverse_scorecard"`
	Rounding         bool       `yaml:"rounding"`
	Variables        []Variable `yaml:"variables"`
}

// Variable is one selected model variable with its fitted coefficient.
type Variable struct {
	Name        string  `yaml:"name"`
	Coefficient float64 `yaml:"coefficient"`
	Bins        []Bin   `yaml:"bins"`
}

// Bin is one bin row of a variable.
type Bin struct {
	ID     int     `yaml:"id"`
	Label  string  `yaml:"label"`
	Metric float64 `yaml:"metric"`
}

// Scaling mirrors the scaling_method configuration surface. Fields are
// pointers so missing and extra keys can be told apart during validation.
type Scaling struct {
	Method          string   `yaml:"method"`
	PDO             *float64 `yaml:"pdo"`
	Odds            *float64 `yaml:"odds"`
	ScorecardPoints *float64 `yaml:"scorecard_points"`
	Min             *float64 `yaml:"min"`
	Max             *float64 `yaml:"max"`
}

// Read loads and validates a model definition file.
func Read(path string) (*Model, error) {
	if path == "" {
		return nil, errors.New("model file path required")
	}

	r, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening model file: %s", path)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading model file: %s", path)
	}

	var m Model
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling model file: %s", path)
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid model file: %s", path)
	}
	return &m, nil
}

// Validate checks the configuration surface before any numeric work.
func (m *Model) Validate() error {
	if m.Name == "" {
		return errors.New("name is required")
	}
	if _, err := m.ScorecardMetric(); err != nil {
		return err
	}
	if _, err := m.ScalingPolicy(); err != nil {
		return err
	}
	if len(m.Variables) == 0 {
		return errors.New("at least one variable is required")
	}
	return nil
}

// ScorecardMetric maps the metric name to the scorecard metric.
func (m *Model) ScorecardMetric() (scorecard.Metric, error) {
	switch m.Metric {
	case "woe":
		return scorecard.MetricWoE, nil
	case "mean":
		return scorecard.MetricMean, nil
	default:
		return "", errors.Errorf("metric must be woe or mean; got %q", m.Metric)
	}
}

// ScalingPolicy maps the scaling section to a scorecard scaling policy.
// Each policy accepts exactly its own keys: missing or extra keys are
// configuration errors.
func (m *Model) ScalingPolicy() (scorecard.Scaling, error) {
	if m.Scaling == nil {
		return nil, nil
	}
	s := m.Scaling

	switch s.Method {
	case "", "none":
		if s.PDO != nil || s.Odds != nil || s.ScorecardPoints != nil || s.Min != nil || s.Max != nil {
			return nil, errors.New("scaling keys given without a scaling method")
		}
		return nil, nil
	case "pdo_odds":
		if s.Min != nil || s.Max != nil {
			return nil, errors.New("min/max are not valid keys for pdo_odds scaling")
		}
		if s.PDO == nil || s.Odds == nil || s.ScorecardPoints == nil {
			return nil, errors.New("pdo_odds scaling requires pdo, odds, and scorecard_points")
		}
		p := scorecard.PdoOdds{PDO: *s.PDO, Odds: *s.Odds, ScorecardPoints: *s.ScorecardPoints}
		return p, p.Validate()
	case "min_max":
		if s.PDO != nil || s.Odds != nil || s.ScorecardPoints != nil {
			return nil, errors.New("pdo/odds/scorecard_points are not valid keys for min_max scaling")
		}
		if s.Min == nil || s.Max == nil {
			return nil, errors.New("min_max scaling requires min and max")
		}
		p := scorecard.MinMax{Min: *s.Min, Max: *s.Max}
		return p, p.Validate()
	default:
		return nil, errors.Errorf("invalid scaling method: %q", s.Method)
	}
}

// Options assembles the scorecard build options.
func (m *Model) Options() (scorecard.Options, error) {
	scaling, err := m.ScalingPolicy()
	if err != nil {
		return scorecard.Options{}, err
	}
	return scorecard.Options{
		Scaling:          scaling,
		InterceptBased:   m.InterceptBased,
		ReverseScorecard: m.ReverseScorecard,
		Rounding:         m.Rounding,
	}, nil
}

// Bins returns the per-variable bin metadata in model order.
func (m *Model) Bins() []scorecard.VariableBins {
	vars := make([]scorecard.VariableBins, 0, len(m.Variables))
	for _, v := range m.Variables {
		vb := scorecard.VariableBins{Variable: v.Name}
		for _, b := range v.Bins {
			vb.Bins = append(vb.Bins, scorecard.Bin{ID: b.ID, Label: b.Label, Metric: b.Metric})
		}
		vars = append(vars, vb)
	}
	return vars
}

// Coefficients returns one coefficient per variable, in model order.
func (m *Model) Coefficients() []float64 {
	coefs := make([]float64, 0, len(m.Variables))
	for _, v := range m.Variables {
		coefs = append(coefs, v.Coefficient)
	}
	return coefs
}

// Build assembles the scorecard described by the model definition.
func (m *Model) Build() (*scorecard.Result, error) {
	metric, err := m.ScorecardMetric()
	if err != nil {
		return nil, err
	}
	opts, err := m.Options()
	if err != nil {
		return nil, err
	}
	return scorecard.Build(m.Bins(), m.Coefficients(), m.Intercept, metric, opts)
}
