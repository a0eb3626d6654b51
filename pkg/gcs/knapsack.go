package gcs

// Knapsack posts the 0/1 knapsack relation (spec.md §4.7): Items[i] in
// {0,1} selects item i; sum(weight_i * item_i) == WeightVar; sum(profit_i *
// item_i) == ProfitVar. Both sums are propagated by bound reasoning;
// additionally, a dynamic-programming resource frontier bounds ProfitVar
// each time the Knapsack propagator runs.
type Knapsack struct {
	Weights   []Integer
	Profits   []Integer
	Items     []IntegerVariableID
	WeightVar IntegerVariableID
	ProfitVar IntegerVariableID
}

func (c *Knapsack) Post(m *Model) error {
	wTerms := make([]LinearTerm, 0, len(c.Items)+1)
	pTerms := make([]LinearTerm, 0, len(c.Items)+1)
	for i, it := range c.Items {
		wTerms = append(wTerms, LinearTerm{Coeff: c.Weights[i], Var: it})
		pTerms = append(pTerms, LinearTerm{Coeff: c.Profits[i], Var: it})
	}
	wTerms = append(wTerms, LinearTerm{Coeff: -1, Var: c.WeightVar})
	pTerms = append(pTerms, LinearTerm{Coeff: -1, Var: c.ProfitVar})
	if err := (&LinearEquals{Terms: wTerms, RHS: 0}).Post(m); err != nil {
		return err
	}
	if err := (&LinearEquals{Terms: pTerms, RHS: 0}).Post(m); err != nil {
		return err
	}

	triggers := TriggerSet{OnInstantiated: []int{}}
	for _, it := range c.Items {
		if it.IsSimple() {
			triggers.OnInstantiated = append(triggers.OnInstantiated, it.simple)
		}
	}
	if c.WeightVar.IsSimple() {
		triggers.OnBounds = append(triggers.OnBounds, c.WeightVar.simple)
	}
	if c.ProfitVar.IsSimple() {
		triggers.OnBounds = append(triggers.OnBounds, c.ProfitVar.simple)
	}
	m.sched.Register("Knapsack", triggers, func(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
		return c.propagateFrontier(store, tracker)
	})
	return nil
}

// propagateFrontier runs a 0/1-knapsack DP over items whose Items[i]
// variable is still unfixed, bounding the best achievable profit for each
// feasible remaining capacity within the WeightVar upper bound. If that
// best profit is below ProfitVar's lower bound it raises a contradiction;
// otherwise it lowers ProfitVar's upper bound to it. Items are not forced
// in or out.
func (c *Knapsack) propagateFrontier(store *Store, tracker *InferenceTracker) (PropagatorResult, error) {
	capacity := int(store.UpperBound(c.WeightVar))
	if capacity < 0 {
		return Enable, nil
	}

	fixedWeight, fixedProfit := Integer(0), Integer(0)
	var freeIdx []int
	for i, it := range c.Items {
		if store.HasSingleValue(it) {
			if store.Value(it) == 1 {
				fixedWeight = AddSat(fixedWeight, c.Weights[i])
				fixedProfit = AddSat(fixedProfit, c.Profits[i])
			}
			continue
		}
		freeIdx = append(freeIdx, i)
	}
	remainingCap := int(Integer(capacity) - fixedWeight)
	if remainingCap < 0 {
		return Enable, tracker.Contradiction(RUPJustification(), nil)
	}

	// DP frontier over free items only: best[w] = best profit achievable
	// using some subset of free items with total weight <= w.
	best := make([]Integer, remainingCap+1)
	for _, idx := range freeIdx {
		w, p := int(c.Weights[idx]), c.Profits[idx]
		if w < 0 || w > remainingCap {
			continue
		}
		for cap := remainingCap; cap >= w; cap-- {
			cand := AddSat(best[cap-w], p)
			if cand > best[cap] {
				best[cap] = cand
			}
		}
	}
	bestAchievable := Integer(0)
	for _, v := range best {
		bestAchievable = MaxI(bestAchievable, v)
	}
	totalBest := AddSat(fixedProfit, bestAchievable)
	if totalBest < store.LowerBound(c.ProfitVar) {
		return Enable, tracker.Contradiction(RUPJustification(), nil)
	}
	_, how, err := tracker.Infer(LessThan(c.ProfitVar, AddSat(totalBest, 1)), RUPJustification(), nil)
	if err != nil {
		return Enable, err
	}
	if how == contradictionMarker {
		return Enable, nil
	}
	return Enable, nil
}
