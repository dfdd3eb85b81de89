package scorecard

// normalizeIntercept rebases every variable so its lowest bin scores
// exactly zero, folding the subtracted minimums into a single intercept
// term. The total score of any record is unchanged. Running it on an
// already normalized table adds nothing and changes nothing.
func normalizeIntercept(t *Table) float64 {
	var intercept float64
	for _, g := range t.groups() {
		min := t.Entries[g[0]].Points
		for i := g[0] + 1; i < g[1]; i++ {
			if t.Entries[i].Points < min {
				min = t.Entries[i].Points
			}
		}
		for i := g[0]; i < g[1]; i++ {
			t.Entries[i].Points -= min
		}
		intercept += min
	}
	return intercept
}
