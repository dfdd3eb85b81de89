package scorecard

import (
	"math"
)

// RoundStatus reports how the integer point values were produced.
type RoundStatus string

const (
	// RoundOptimal means the bound-preserving search completed and the
	// returned points minimize the total deviation from the continuous
	// points.
	RoundOptimal RoundStatus = "OPTIMAL"

	// RoundFeasible means the node budget expired but a valid
	// bound-preserving solution was found before it did.
	RoundFeasible RoundStatus = "FEASIBLE"

	// RoundFallback means no bound-preserving solution was found within
	// budget; the points are independent nearest-integer roundings.
	RoundFallback RoundStatus = "FALLBACK"
)

// DefaultRoundBudget is the default node budget for the bound-preserving
// search.
const DefaultRoundBudget = 100000

// RoundResult carries the integer points together with the solver outcome.
// The caller decides what to do on RoundFallback; it is never silent.
type RoundResult struct {
	Points []float64
	Status RoundStatus
	Nodes  int
}

// roundPoints converts the table's continuous points to integers and
// returns the result without touching the table.
//
// Under min_max scaling the per-bin floor/ceil choices are searched so
// that the total achievable score stays within the configured range;
// every other policy rounds each bin independently to the nearest
// integer, halves away from zero.
func roundPoints(t *Table, scaling Scaling, intercept float64, budget int) RoundResult {
	if budget <= 0 {
		budget = DefaultRoundBudget
	}
	if s, ok := scaling.(MinMax); ok {
		return roundBounded(t, s, intercept, budget)
	}
	return RoundResult{Points: roundNearest(t), Status: RoundOptimal}
}

// roundNearest rounds every entry independently, halves away from zero.
func roundNearest(t *Table) []float64 {
	points := make([]float64, len(t.Entries))
	for i, e := range t.Entries {
		points[i] = math.Round(e.Points)
	}
	return points
}

const roundEps = 1e-9

// boundedRounder is a depth-first branch-and-bound over per-bin
// floor/ceil choices. It minimizes the total absolute deviation from the
// continuous points, subject to the rounded theoretical minimum and
// maximum total score staying within the configured range plus slack.
type boundedRounder struct {
	lo, hi         []float64 // per-entry floor and ceil
	costLo, costHi []float64
	groups         [][2]int
	groupOf        []int

	lower, upper float64 // feasibility thresholds, intercept included
	budget       int

	sufCost  []float64 // minimal remaining cost from entry i on
	sufHiMin []float64 // within-group: best achievable group minimum from i on
	sufLoMax []float64 // within-group: least achievable group maximum from i on
	futMin   []float64 // best achievable sum of group minimums from group gi on
	futMax   []float64 // least achievable sum of group maximums from group gi on

	cur       []float64
	best      []float64
	bestCost  float64
	found     bool
	nodes     int
	exhausted bool
}

func roundBounded(t *Table, s MinMax, intercept float64, budget int) RoundResult {
	n := len(t.Entries)
	groups := t.groups()

	r := &boundedRounder{
		lo:       make([]float64, n),
		hi:       make([]float64, n),
		costLo:   make([]float64, n),
		costHi:   make([]float64, n),
		groups:   groups,
		groupOf:  make([]int, n),
		budget:   budget,
		sufCost:  make([]float64, n+1),
		sufHiMin: make([]float64, n),
		sufLoMax: make([]float64, n),
		futMin:   make([]float64, len(groups)+1),
		futMax:   make([]float64, len(groups)+1),
		cur:      make([]float64, n),
		best:     make([]float64, n),
	}

	// Each variable contributes at most half a point of rounding error at
	// either end of the range.
	slack := 0.5 * float64(len(groups))
	r.lower = s.Min - intercept - slack - roundEps
	r.upper = s.Max - intercept + slack + roundEps

	for i, e := range t.Entries {
		r.lo[i] = math.Floor(e.Points)
		r.hi[i] = math.Ceil(e.Points)
		r.costLo[i] = e.Points - r.lo[i]
		r.costHi[i] = r.hi[i] - e.Points
	}

	for gi, g := range groups {
		hiMin, loMax := math.Inf(1), math.Inf(-1)
		for i := g[1] - 1; i >= g[0]; i-- {
			r.groupOf[i] = gi
			hiMin = math.Min(hiMin, r.hi[i])
			loMax = math.Max(loMax, r.lo[i])
			r.sufHiMin[i] = hiMin
			r.sufLoMax[i] = loMax
		}
	}
	for gi := len(groups) - 1; gi >= 0; gi-- {
		g := groups[gi]
		r.futMin[gi] = r.futMin[gi+1] + r.sufHiMin[g[0]]
		r.futMax[gi] = r.futMax[gi+1] + r.sufLoMax[g[0]]
	}
	for i := n - 1; i >= 0; i-- {
		r.sufCost[i] = r.sufCost[i+1] + math.Min(r.costLo[i], r.costHi[i])
	}

	r.dfs(0, 0, math.Inf(1), math.Inf(-1), 0, 0, 0)

	if !r.found {
		return RoundResult{Points: roundNearest(t), Status: RoundFallback, Nodes: r.nodes}
	}
	status := RoundOptimal
	if r.exhausted {
		status = RoundFeasible
	}
	return RoundResult{Points: r.best, Status: status, Nodes: r.nodes}
}

// dfs explores the choice for entry i. curMin/curMax track the running
// minimum and maximum of the current group; minSum/maxSum accumulate the
// finished groups.
func (r *boundedRounder) dfs(i, gi int, curMin, curMax, minSum, maxSum, cost float64) {
	if r.exhausted {
		return
	}
	r.nodes++
	if r.nodes > r.budget {
		r.exhausted = true
		return
	}

	// Close out the group when its last entry has been decided.
	if gi < len(r.groups) && i == r.groups[gi][1] {
		minSum += curMin
		maxSum += curMax
		gi++
		curMin, curMax = math.Inf(1), math.Inf(-1)
	}

	if i == len(r.lo) {
		if minSum >= r.lower && maxSum <= r.upper && (!r.found || cost < r.bestCost-roundEps) {
			copy(r.best, r.cur)
			r.bestCost = cost
			r.found = true
		}
		return
	}

	// Cost bound: the best completion cannot beat the incumbent.
	if r.found && cost+r.sufCost[i] >= r.bestCost-roundEps {
		return
	}

	// Bound feasibility: even the most favorable remaining choices cannot
	// bring the totals back inside the range.
	if minSum+math.Min(curMin, r.sufHiMin[i])+r.futMin[gi+1] < r.lower {
		return
	}
	if maxSum+math.Max(curMax, r.sufLoMax[i])+r.futMax[gi+1] > r.upper {
		return
	}

	first, second := r.lo[i], r.hi[i]
	firstCost, secondCost := r.costLo[i], r.costHi[i]
	if firstCost > secondCost {
		first, second = second, first
		firstCost, secondCost = secondCost, firstCost
	}

	r.cur[i] = first
	r.dfs(i+1, gi, math.Min(curMin, first), math.Max(curMax, first), minSum, maxSum, cost+firstCost)

	if first != second {
		r.cur[i] = second
		r.dfs(i+1, gi, math.Min(curMin, second), math.Max(curMax, second), minSum, maxSum, cost+secondCost)
	}
}
