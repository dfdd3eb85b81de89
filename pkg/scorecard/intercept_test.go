package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIntercept_MinIsZero(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	intercept := normalizeIntercept(tbl)

	assert.InDelta(t, 1.2+(-0.5), intercept, 1e-9)
	for _, g := range tbl.groups() {
		min := tbl.Entries[g[0]].Points
		for i := g[0] + 1; i < g[1]; i++ {
			if tbl.Entries[i].Points < min {
				min = tbl.Entries[i].Points
			}
		}
		assert.InDelta(t, 0, min, 1e-9)
	}
}

func TestNormalizeIntercept_PreservesTotals(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	before, err := tbl.Score(map[string]int{"age": 1, "income": 0}, 0)
	require.NoError(t, err)

	intercept := normalizeIntercept(tbl)
	after, err := tbl.Score(map[string]int{"age": 1, "income": 0}, intercept)
	require.NoError(t, err)

	assert.InDelta(t, before, after, 1e-9)
}

func TestNormalizeIntercept_Idempotent(t *testing.T) {
	tbl := twoVarTable(1.2, 3.7, -0.5, 2.1)
	first := normalizeIntercept(tbl)
	require.NotZero(t, first)

	snapshot := make([]float64, len(tbl.Entries))
	for i, e := range tbl.Entries {
		snapshot[i] = e.Points
	}

	second := normalizeIntercept(tbl)
	assert.Zero(t, second)
	for i, e := range tbl.Entries {
		assert.Equal(t, snapshot[i], e.Points)
	}
}
