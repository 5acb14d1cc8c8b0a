package engine

import (
	"github.com/piwi3910/CutPlan/internal/model"
)

// NoLoop marks an entry that is not part of a multi-pass loop.
const NoLoop = -1

// Entry is one pass of one cut in the expanded cut list.
type Entry struct {
	Cut      int // Index into Job.Cuts
	Loop     int // Loop marker, the cut index for multi-pass cuts, NoLoop otherwise
	Pass     int // 1-based
	Passes   int // Passes remaining for the cut when it was expanded
	Reversed bool
}

// Expand replaces each cut by its remaining passes. Cuts with nothing left
// to burn produce no entries and are returned in dropped, in input order.
func Expand(cuts []model.Cut) (entries []Entry, dropped []int) {
	for ci := range cuts {
		n := cuts[ci].Remaining()
		if n <= 0 {
			dropped = append(dropped, ci)
			continue
		}
		marker := NoLoop
		if n > 1 {
			marker = ci
		}
		for p := 1; p <= n; p++ {
			entries = append(entries, Entry{Cut: ci, Loop: marker, Pass: p, Passes: n})
		}
	}
	return entries, dropped
}

// Units folds each run of entries sharing a loop marker into one UnitLoop.
// Unmarked entries become single UnitCut units. Seq follows the input.
func Units(entries []Entry, cuts []model.Cut) []Unit {
	var units []Unit
	for i := 0; i < len(entries); {
		j := i + 1
		if entries[i].Loop != NoLoop {
			for j < len(entries) && entries[j].Loop == entries[i].Loop {
				j++
			}
		}
		c := &cuts[entries[i].Cut]
		u := Unit{
			Kind:       UnitCut,
			Seq:        len(units),
			Entries:    entries[i:j:j],
			Reversible: c.CanReverse(),
			start:      c.Start,
			end:        c.End,
		}
		if entries[i].Loop != NoLoop {
			u.Kind = UnitLoop
		}
		units = append(units, u)
		i = j
	}
	return units
}

// Collapse merges consecutive passes of the same loop into one entry whose
// Passes holds the run length. It is the inverse of Expand on a scheduled
// sequence.
func Collapse(entries []Entry) []Entry {
	var out []Entry
	for i := 0; i < len(entries); {
		e := entries[i]
		j := i + 1
		if e.Loop != NoLoop {
			for j < len(entries) && entries[j].Loop == e.Loop && entries[j].Pass == entries[j-1].Pass+1 {
				j++
			}
		}
		e.Passes = j - i
		out = append(out, e)
		i = j
	}
	return out
}
