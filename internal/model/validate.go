package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativePasses  = errors.New("negative pass count")
	ErrNegativeBurns   = errors.New("negative burn count")
	ErrInvalidGeometry = errors.New("geometry cannot produce a bounding box")
	ErrInvalidRaster   = errors.New("malformed raster")
	ErrBadGroupRef     = errors.New("invalid group reference")
)

// InputError identifies the cut or group that made a job unplannable.
type InputError struct {
	Cut   int // Index into Job.Cuts, -1 when the error is about a group
	Group int // Index into Job.Groups, -1 when the error is about a cut
	ID    string
	Err   error
}

func (e *InputError) Error() string {
	if e.Cut >= 0 {
		return fmt.Sprintf("cut %d (%s): %v", e.Cut, e.ID, e.Err)
	}
	return fmt.Sprintf("group %d (%s): %v", e.Group, e.ID, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ValidateJob checks every cut and group of the job. All offenders are
// reported, joined into a single error.
func ValidateJob(j *Job) error {
	var errs []error
	cutErr := func(i int, err error) {
		errs = append(errs, &InputError{Cut: i, Group: -1, ID: j.Cuts[i].ID, Err: err})
	}
	groupErr := func(i int, err error) {
		errs = append(errs, &InputError{Cut: -1, Group: i, ID: j.Groups[i].ID, Err: err})
	}

	for i, c := range j.Cuts {
		if c.Passes < 0 {
			cutErr(i, fmt.Errorf("%w: %d", ErrNegativePasses, c.Passes))
		}
		if c.Burns < 0 {
			cutErr(i, fmt.Errorf("%w: %d", ErrNegativeBurns, c.Burns))
		}
		if err := validateGeometry(c); err != nil {
			cutErr(i, err)
		}
		if c.Group < -1 || c.Group >= len(j.Groups) {
			cutErr(i, fmt.Errorf("%w: %d", ErrBadGroupRef, c.Group))
		}
	}

	owner := make(map[int]int, len(j.Cuts))
	for gi, g := range j.Groups {
		for _, ci := range g.Cuts {
			if ci < 0 || ci >= len(j.Cuts) {
				groupErr(gi, fmt.Errorf("%w: cut index %d out of range", ErrBadGroupRef, ci))
				continue
			}
			if prev, ok := owner[ci]; ok {
				groupErr(gi, fmt.Errorf("%w: cut %d already belongs to group %d", ErrBadGroupRef, ci, prev))
				continue
			}
			owner[ci] = gi
			if j.Cuts[ci].Group != gi {
				groupErr(gi, fmt.Errorf("%w: cut %d points at group %d", ErrBadGroupRef, ci, j.Cuts[ci].Group))
			}
		}
	}
	for i, c := range j.Cuts {
		if c.Group >= 0 && c.Group < len(j.Groups) {
			if _, ok := owner[i]; !ok {
				cutErr(i, fmt.Errorf("%w: group %d does not list this cut", ErrBadGroupRef, c.Group))
			}
		}
	}

	return errors.Join(errs...)
}

func validateGeometry(c Cut) error {
	if !c.Start.Finite() || !c.End.Finite() {
		return fmt.Errorf("%w: non-finite endpoint", ErrInvalidGeometry)
	}
	for _, p := range c.Path {
		if !p.Finite() {
			return fmt.Errorf("%w: non-finite path vertex", ErrInvalidGeometry)
		}
	}
	if c.Kind == KindRaster {
		r := c.Raster
		if r == nil {
			return fmt.Errorf("%w: raster cut without samples", ErrInvalidRaster)
		}
		if r.Width <= 0 || r.Height <= 0 || !(r.Step > 0) || math.IsInf(r.Step, 0) || len(r.Data) != r.Width*r.Height {
			return fmt.Errorf("%w: %dx%d step %g with %d samples", ErrInvalidRaster, r.Width, r.Height, r.Step, len(r.Data))
		}
		if !r.Origin.Finite() {
			return fmt.Errorf("%w: non-finite origin", ErrInvalidGeometry)
		}
	}
	return nil
}
