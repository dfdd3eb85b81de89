package scorecard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoVarTable(points ...float64) *Table {
	// two variables, two bins each
	t := &Table{Metric: MetricWoE}
	vars := []string{"age", "income"}
	for i, p := range points {
		t.Entries = append(t.Entries, BinEntry{
			Variable:    vars[i/2],
			BinID:       i % 2,
			Bin:         "bin",
			Metric:      p,
			Coefficient: 1,
			Points:      p,
		})
	}
	return t
}

func minMaxTotals(t *Table) (float64, float64) {
	var lo, hi float64
	for _, g := range t.groups() {
		gLo, gHi := t.Entries[g[0]].Points, t.Entries[g[0]].Points
		for i := g[0] + 1; i < g[1]; i++ {
			gLo = math.Min(gLo, t.Entries[i].Points)
			gHi = math.Max(gHi, t.Entries[i].Points)
		}
		lo += gLo
		hi += gHi
	}
	return lo, hi
}

func TestScalePoints_MinMaxBounds(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	err := scalePoints(tbl, MinMax{Min: 300, Max: 850}, 0, false)
	require.NoError(t, err)

	lo, hi := minMaxTotals(tbl)
	assert.InDelta(t, 300, lo, 1e-9)
	assert.InDelta(t, 850, hi, 1e-9)
}

func TestScalePoints_MinMaxReverse(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	err := scalePoints(tbl, MinMax{Min: 300, Max: 850}, 0, true)
	require.NoError(t, err)

	lo, hi := minMaxTotals(tbl)
	assert.InDelta(t, 300, lo, 1e-9)
	assert.InDelta(t, 850, hi, 1e-9)

	// reversing flips which raw extreme lands on which end: the bin with
	// the higher raw points now scores higher
	assert.Greater(t, tbl.Entries[1].Points, tbl.Entries[0].Points)
}

func TestScalePoints_MinMaxIntercept(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	err := scalePoints(tbl, MinMax{Min: 0, Max: 100}, -1.75, false)
	require.NoError(t, err)

	lo, hi := minMaxTotals(tbl)
	assert.InDelta(t, 0, lo, 1e-9)
	assert.InDelta(t, 100, hi, 1e-9)
}

func TestScalePoints_MinMaxDegenerate(t *testing.T) {
	tbl := twoVarTable(1.5, 1.5, -2, -2)
	err := scalePoints(tbl, MinMax{Min: 300, Max: 850}, 0, false)
	assert.ErrorIs(t, err, ErrDegenerateScale)
}

func TestScalePoints_PdoDoublingOdds(t *testing.T) {
	// a single variable with two bins whose raw log-odds differ by ln(2):
	// doubling the odds must move the total score by exactly pdo points
	for _, s := range []PdoOdds{
		{PDO: 20, Odds: 50, ScorecardPoints: 600},
		{PDO: 20, Odds: 10, ScorecardPoints: 450},
	} {
		tbl := &Table{Metric: MetricWoE, Entries: []BinEntry{
			{Variable: "v", BinID: 0, Metric: 0.4, Coefficient: 1, Points: 0.4},
			{Variable: "v", BinID: 1, Metric: 0.4 + math.Ln2, Coefficient: 1, Points: 0.4 + math.Ln2},
		}}
		require.NoError(t, scalePoints(tbl, s, 0, false))

		diff := tbl.Entries[0].Points - tbl.Entries[1].Points
		assert.InDelta(t, s.PDO, diff, 1e-9)
	}
}

func TestScalePoints_Identity(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	require.NoError(t, scalePoints(tbl, nil, 0.5, false))
	assert.Equal(t, 1.2, tbl.Entries[0].Points)
	assert.Equal(t, 2.1, tbl.Entries[3].Points)
}

func TestScalingValidate(t *testing.T) {
	assert.NoError(t, PdoOdds{PDO: 20, Odds: 50, ScorecardPoints: 600}.Validate())
	assert.Error(t, PdoOdds{PDO: 0, Odds: 50, ScorecardPoints: 600}.Validate())
	assert.Error(t, PdoOdds{PDO: 20, Odds: -1, ScorecardPoints: 600}.Validate())
	assert.Error(t, PdoOdds{PDO: 20, Odds: 50}.Validate())

	assert.NoError(t, MinMax{Min: 300, Max: 850}.Validate())
	assert.NoError(t, MinMax{Min: 300, Max: 300}.Validate())
	assert.Error(t, MinMax{Min: 850, Max: 300}.Validate())
	assert.Error(t, MinMax{Min: math.NaN(), Max: 300}.Validate())
}
