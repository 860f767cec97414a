package validate

import (
	"github.com/nagomi-dev/dayflow/internal/domain"
)

// MinBlockMinutes is the smallest block a schedule may carry.
const MinBlockMinutes = 1

// Validator enforces block-level invariants on a candidate day
// schedule before anything is persisted. Day-wrap is disallowed at the
// schedule level: only low-level interval arithmetic understands wrap,
// so every edit must resolve to non-wrapping ranges.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSchedule checks the triple's shape: every block present,
// strictly forward in minute space, at least MinBlockMinutes long, and
// pairwise non-overlapping. Resolvers are supposed to hand in an
// overlap-free triple already; the pairwise check here is the last gate
// before anything is persisted. On any violation the caller must not
// persist partial state.
func (v *Validator) ValidateSchedule(schedule *domain.DaySchedule) error {
	blocks := schedule.Blocks.Blocks()
	for _, block := range blocks {
		minutes, err := block.Range.MinutesStrict()
		if err != nil {
			return err
		}
		if minutes < MinBlockMinutes {
			return &domain.InvalidRangeError{Start: block.Range.Start, End: block.Range.End}
		}
	}

	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			if blocks[i].Range.Overlaps(blocks[j].Range) {
				return &domain.UnresolvableOverlapError{
					Block:  blocks[j].Label,
					Reason: "blocks overlap",
				}
			}
		}
	}

	if _, err := (domain.TimeRange{Start: schedule.WakeTime, End: schedule.SleepTime}).MinutesStrict(); err != nil {
		return err
	}

	return nil
}

// ValidateCapacity checks that the given task durations fit the block.
// The error carries the exact overage so the caller can offer
// shrink-a-task or extend-the-block guidance; nothing is silently
// truncated.
func (v *Validator) ValidateCapacity(block domain.EnergyBlock, taskDurations []int) error {
	capacity, err := block.Range.MinutesStrict()
	if err != nil {
		return err
	}

	total := 0
	for _, d := range taskDurations {
		total += d
	}

	if total > capacity {
		return &domain.CapacityExceededError{
			Block:         block.Label,
			ExcessMinutes: total - capacity,
		}
	}

	return nil
}
