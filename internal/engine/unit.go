package engine

import (
	"github.com/piwi3910/CutPlan/internal/model"
)

// UnitKind is the variant tag of a schedulable unit.
type UnitKind int

const (
	UnitCut   UnitKind = iota // A single pass of one cut
	UnitLoop                  // All remaining passes of one cut, back to back
	UnitBlock                 // An ordered run of units that must stay together
)

func (k UnitKind) String() string {
	switch k {
	case UnitLoop:
		return "loop"
	case UnitBlock:
		return "block"
	default:
		return "cut"
	}
}

// Unit is what the travel optimizer orders. It is entered at one end and
// left at the other; nothing is ever scheduled between its parts.
type Unit struct {
	Kind       UnitKind
	Seq        int     // Position in the candidate list the unit was built from
	Entries    []Entry // UnitCut and UnitLoop: the passes, in order
	Parts      []Unit  // UnitBlock: the member units, in order
	Reversible bool
	Reversed   bool

	start, end model.Point2D // Entry and exit when traversed forward
}

// EntryPoint returns where the head has to be to start the unit.
func (u *Unit) EntryPoint() model.Point2D {
	if u.Reversed {
		return u.end
	}
	return u.start
}

// ExitPoint returns where the head is when the unit finishes.
func (u *Unit) ExitPoint() model.Point2D {
	if u.Reversed {
		return u.start
	}
	return u.end
}

// SetReversed orients the unit. Non-reversible units ignore the request.
func (u *Unit) SetReversed(rev bool) {
	u.Reversed = rev && u.Reversible
}

// Size returns the number of expanded entries the unit produces.
func (u *Unit) Size() int {
	switch u.Kind {
	case UnitBlock:
		n := 0
		for i := range u.Parts {
			n += u.Parts[i].Size()
		}
		return n
	default:
		return len(u.Entries)
	}
}

// appendEntries flattens the unit into execution order. flip reverses the
// traversal on top of the unit's own orientation.
func (u *Unit) appendEntries(dst []Entry, flip bool) []Entry {
	rev := u.Reversed != flip
	switch u.Kind {
	case UnitBlock:
		if rev {
			for i := len(u.Parts) - 1; i >= 0; i-- {
				dst = u.Parts[i].appendEntries(dst, true)
			}
		} else {
			for i := range u.Parts {
				dst = u.Parts[i].appendEntries(dst, false)
			}
		}
	case UnitCut, UnitLoop:
		for _, e := range u.Entries {
			e.Reversed = rev
			dst = append(dst, e)
		}
	}
	return dst
}

// Flatten expands ordered units into the entry sequence they execute.
func Flatten(units []Unit) []Entry {
	var out []Entry
	for i := range units {
		out = units[i].appendEntries(out, false)
	}
	return out
}

// newBlock builds a block over parts kept in the given order. The block is
// reversible only when every part is and reversal is allowed.
func newBlock(parts []Unit, allowReverse bool) Unit {
	b := Unit{Kind: UnitBlock, Parts: parts, Reversible: allowReverse}
	for i := range parts {
		if !parts[i].Reversible {
			b.Reversible = false
		}
	}
	if len(parts) > 0 {
		b.Seq = parts[0].Seq
		b.start = parts[0].EntryPoint()
		b.end = parts[len(parts)-1].ExitPoint()
	}
	return b
}
