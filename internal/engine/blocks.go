package engine

// groupUnits builds the candidate units for the given groups, in group
// order. Skip groups become one fixed block; with GroupedInner every group
// is kept together as a block.
func (r *run) groupUnits(groups []int) ([]Unit, error) {
	var units []Unit
	for _, gi := range groups {
		cuts := r.liveCuts(gi)
		if len(cuts) == 0 {
			continue
		}
		parts := make([]Unit, len(cuts))
		for i, ci := range cuts {
			parts[i] = r.cutUnit(ci)
			parts[i].Seq = i
		}

		g := &r.job.Groups[gi]
		switch {
		case g.Skip:
			b, err := r.hatchBlock(parts)
			if err != nil {
				return nil, err
			}
			units = append(units, b)
		case r.settings.GroupedInner && len(parts) > 1:
			units = append(units, newBlock(parts, true))
		default:
			units = append(units, parts...)
		}
	}
	for i := range units {
		units[i].Seq = i
	}
	return units, nil
}

// hatchBlock orders the lines of a hatch or fill group as their own
// sub-problem, anchored at the group's first cut, and fixes the result.
func (r *run) hatchBlock(parts []Unit) (Unit, error) {
	if !r.settings.HatchOptimize || len(parts) < 2 {
		return newBlock(inOrder(parts), false), nil
	}
	sub := r.mon.quiet()
	strat := newStrategy(SelectStrategy(len(parts), r.settings), r.settings, sub)
	ordered, err := strat.Order(parts, parts[0].EntryPoint())
	r.mon.absorb(sub)
	if err != nil {
		return Unit{}, err
	}
	return newBlock(ordered, false), nil
}

// liveCuts returns the group's cuts that still have passes, in group order.
func (r *run) liveCuts(gi int) []int {
	var out []int
	for _, ci := range r.job.Groups[gi].Cuts {
		if len(r.byCut[ci]) > 0 {
			out = append(out, ci)
		}
	}
	return out
}

func (r *run) cutUnit(ci int) Unit {
	return Units(r.byCut[ci], r.job.Cuts)[0]
}
