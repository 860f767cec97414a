package proposal

import (
	"fmt"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/service/velocity"
)

// Generator turns analyzer output into at most one concrete
// schedule-change proposal. It never fabricates a recommendation from
// insufficient data: no fastest hour, no proposal.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate emits a shift_high_block proposal whose target is the
// two-hour window around the fastest hour, clamped to the day and
// aligned to HH:00 boundaries.
func (g *Generator) Generate(result *velocity.Result) []domain.Proposal {
	if result == nil || result.FastestHour == nil {
		return nil
	}

	fastest := *result.FastestHour
	startHour := max(fastest-1, 0)
	endHour := min(fastest+1, 23)

	target := domain.TimeRange{
		Start: domain.TimeOfDay(startHour * 60),
		End:   domain.TimeOfDay(endHour * 60),
	}

	return []domain.Proposal{{
		Kind:   domain.ProposalShiftHighBlock,
		Target: target,
		Rationale: fmt.Sprintf(
			"You complete tasks fastest around %02d:00. Moving your high-energy block to %s-%s would line your hardest work up with it.",
			fastest, target.Start.Clock(), target.End.Clock(),
		),
	}}
}
