package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thresholdBinner bins each variable by fixed cut points: values below the
// cut fall into bin 0, the rest into bin 1.
type thresholdBinner struct {
	tables []VariableBins
	cuts   map[string]float64
}

func (b *thresholdBinner) Variables() []string {
	names := make([]string, 0, len(b.tables))
	for _, t := range b.tables {
		names = append(names, t.Variable)
	}
	return names
}

func (b *thresholdBinner) Tables() []VariableBins { return b.tables }

func (b *thresholdBinner) BinIndex(variable string, value float64) (int, error) {
	if value < b.cuts[variable] {
		return 0, nil
	}
	return 1, nil
}

// fixedEstimator returns canned coefficients regardless of training data.
type fixedEstimator struct {
	coefs     []float64
	intercept float64
	fitCalls  int
}

func (e *fixedEstimator) Fit(x [][]float64, y []float64) error {
	e.fitCalls++
	return nil
}

func (e *fixedEstimator) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		s := e.intercept
		for j, v := range row {
			s += e.coefs[j] * v
		}
		out[i] = s
	}
	return out
}

func (e *fixedEstimator) Coefficients() []float64 { return e.coefs }
func (e *fixedEstimator) Intercept() float64      { return e.intercept }

func newTestScorecard(opts Options) (*Scorecard, *fixedEstimator) {
	binner := &thresholdBinner{
		tables: demoVars(),
		cuts:   map[string]float64{"age": 25, "income": 40000},
	}
	est := &fixedEstimator{coefs: []float64{1, 1}, intercept: 0}
	return New(binner, est, MetricWoE, opts), est
}

func testFrame() (map[string][]float64, []float64) {
	x := map[string][]float64{
		"age":    {22, 47, 31},
		"income": {25000, 61000, 38000},
	}
	y := []float64{1, 0, 1}
	return x, y
}

func TestScorecard_NotFitted(t *testing.T) {
	sc, _ := newTestScorecard(Options{})
	x, _ := testFrame()

	_, err := sc.Table()
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = sc.Score(x)
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = sc.Predict(x)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestScorecard_FitAndScore(t *testing.T) {
	sc, est := newTestScorecard(Options{})
	x, y := testFrame()

	require.NoError(t, sc.Fit(x, y))
	assert.Equal(t, 1, est.fitCalls)

	tbl, err := sc.Table()
	require.NoError(t, err)
	assert.Len(t, tbl.Entries, 4)

	scores, err := sc.Score(x)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	// record 0: age 22 -> bin 0 (1.2), income 25000 -> bin 0 (-0.5)
	assert.InDelta(t, 1.2-0.5, scores[0], 1e-9)
	// record 1: age 47 -> bin 1 (3.7), income 61000 -> bin 1 (2.1)
	assert.InDelta(t, 3.7+2.1, scores[1], 1e-9)
}

func TestScorecard_ScoreMatchesPredictInMetricSpace(t *testing.T) {
	// with identity scaling and unit coefficients the scorecard score is
	// the model's linear predictor
	sc, _ := newTestScorecard(Options{})
	x, y := testFrame()
	require.NoError(t, sc.Fit(x, y))

	scores, err := sc.Score(x)
	require.NoError(t, err)
	preds, err := sc.Predict(x)
	require.NoError(t, err)

	for i := range scores {
		assert.InDelta(t, preds[i], scores[i], 1e-9)
	}
}

func TestScorecard_ScaledScoreWithinRange(t *testing.T) {
	sc, _ := newTestScorecard(Options{
		Scaling:        MinMax{Min: 300, Max: 850},
		InterceptBased: true,
		Rounding:       true,
	})
	x, y := testFrame()
	require.NoError(t, sc.Fit(x, y))

	status, err := sc.RoundStatus()
	require.NoError(t, err)
	assert.Equal(t, RoundOptimal, status)

	scores, err := sc.Score(x)
	require.NoError(t, err)
	for _, v := range scores {
		assert.GreaterOrEqual(t, v, 298.0)
		assert.LessOrEqual(t, v, 852.0)
	}
}

func TestScorecard_MissingColumn(t *testing.T) {
	sc, _ := newTestScorecard(Options{})
	_, y := testFrame()
	err := sc.Fit(map[string][]float64{"age": {1, 2, 3}}, y)
	assert.Error(t, err)
}

func TestScorecard_RaggedColumns(t *testing.T) {
	sc, _ := newTestScorecard(Options{})
	err := sc.Fit(map[string][]float64{
		"age":    {22, 47},
		"income": {25000},
	}, []float64{1, 0})
	assert.Error(t, err)
}
