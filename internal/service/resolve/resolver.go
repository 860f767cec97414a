package resolve

import (
	"log/slog"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

// Resolver turns a candidate block triple into a pairwise
// non-overlapping one. Both transforms are pure and deterministic: the
// input triple is never mutated, and the only failure mode is
// UnresolvableOverlapError — a resolver never returns overlapping
// blocks.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Detect reports whether any two blocks of the triple overlap. Whether
// to prompt the user before resolving is the caller's policy, not the
// resolver's.
func (r *Resolver) Detect(blocks domain.BlockTriple) bool {
	labels := domain.EnergyLabels()
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			if blocks.Range(labels[i]).Overlaps(blocks.Range(labels[j])) {
				return true
			}
		}
	}
	return false
}

// Rechain resolves a wholesale times edit. Blocks are processed in
// canonical order High, Medium, Low: a block whose start lies before
// the previous block's (possibly already shifted) end is shifted to
// start there, keeping its own duration. Shift, don't shrink. An
// already non-overlapping triple is returned unchanged.
func (r *Resolver) Rechain(blocks domain.BlockTriple) (domain.BlockTriple, error) {
	if !r.Detect(blocks) {
		return blocks, nil
	}

	resolved := blocks
	prevEnd := resolved.High.End

	for _, label := range []domain.EnergyLabel{domain.EnergyMedium, domain.EnergyLow} {
		current := resolved.Range(label)
		if current.Start < prevEnd {
			duration := current.Minutes()
			shifted := domain.TimeRange{
				Start: prevEnd,
				End:   prevEnd + domain.TimeOfDay(duration),
			}
			if int(shifted.End) >= domain.MinutesPerDay {
				return domain.BlockTriple{}, &domain.UnresolvableOverlapError{
					Block:  label,
					Reason: "shifted block would run past midnight",
				}
			}
			slog.Debug("re-chained block",
				slog.String("block", label.String()),
				slog.String("start", shifted.Start.Clock()),
				slog.String("end", shifted.End.Clock()),
			)
			resolved.SetRange(label, shifted)
			current = shifted
		}
		prevEnd = current.End
	}

	return resolved, nil
}

// PropagateEdit resolves a single-block boundary edit. First the edited
// block's canonical neighbors are re-seated: a collision with the
// predecessor is solved on the edited block itself — its start is
// clamped to the predecessor's end, shrinking it down to a one-minute
// floor before anything else moves — and a collision with the successor
// shifts the successor to start at the edited end, preserving the
// successor's duration. An edit can also land on a non-neighbor (Low
// dragged into High's range) or cascade past the successor; any pair
// still colliding afterwards is settled by shifting the block later in
// canonical order to start at the earlier block's end, duration
// preserved.
func (r *Resolver) PropagateEdit(blocks domain.BlockTriple, edited domain.EnergyLabel) (domain.BlockTriple, error) {
	labels := domain.EnergyLabels()
	idx := edited.Precedence()

	resolved := blocks
	editedRange := resolved.Range(edited)

	if idx > 0 {
		prev := resolved.Range(labels[idx-1])
		if editedRange.Overlaps(prev) {
			editedRange.Start = prev.End
			if editedRange.End <= editedRange.Start {
				// One-minute floor; the regrown end is handled by the
				// successor shift below.
				editedRange.End = editedRange.Start + 1
			}
			if int(editedRange.End) >= domain.MinutesPerDay {
				return domain.BlockTriple{}, &domain.UnresolvableOverlapError{
					Block:  edited,
					Reason: "clamped block would run past midnight",
				}
			}
			resolved.SetRange(edited, editedRange)
		}
	}

	if idx < len(labels)-1 {
		nextLabel := labels[idx+1]
		next := resolved.Range(nextLabel)
		if editedRange.Overlaps(next) {
			delta := editedRange.End - next.Start
			shifted := domain.TimeRange{
				Start: next.Start + delta,
				End:   next.End + delta,
			}
			if int(shifted.End) >= domain.MinutesPerDay {
				return domain.BlockTriple{}, &domain.UnresolvableOverlapError{
					Block:  nextLabel,
					Reason: "shifted neighbor would run past midnight",
				}
			}
			slog.Debug("shifted neighbor block",
				slog.String("edited", edited.String()),
				slog.String("block", nextLabel.String()),
				slog.String("start", shifted.Start.Clock()),
				slog.String("end", shifted.End.Clock()),
			)
			resolved.SetRange(nextLabel, shifted)
		}
	}

	for pass := 0; pass < len(labels) && r.Detect(resolved); pass++ {
		for i := 0; i < len(labels); i++ {
			for j := i + 1; j < len(labels); j++ {
				earlier := resolved.Range(labels[i])
				later := resolved.Range(labels[j])
				if !earlier.Overlaps(later) {
					continue
				}
				shifted := domain.TimeRange{
					Start: earlier.End,
					End:   earlier.End + domain.TimeOfDay(later.Minutes()),
				}
				if int(shifted.End) >= domain.MinutesPerDay {
					return domain.BlockTriple{}, &domain.UnresolvableOverlapError{
						Block:  labels[j],
						Reason: "shifted block would run past midnight",
					}
				}
				slog.Debug("settled residual collision",
					slog.String("edited", edited.String()),
					slog.String("block", labels[j].String()),
					slog.String("start", shifted.Start.Clock()),
					slog.String("end", shifted.End.Clock()),
				)
				resolved.SetRange(labels[j], shifted)
			}
		}
	}
	if r.Detect(resolved) {
		return domain.BlockTriple{}, &domain.UnresolvableOverlapError{
			Block:  edited,
			Reason: "blocks still overlap after propagation",
		}
	}

	return resolved, nil
}
