package domain

// EnergyLabel names one of the day's three energy blocks.
type EnergyLabel string

const (
	EnergyHigh   EnergyLabel = "high"
	EnergyMedium EnergyLabel = "medium"
	EnergyLow    EnergyLabel = "low"
)

// EnergyLabels lists the three labels in canonical chronological
// precedence, High before Medium before Low.
func EnergyLabels() [3]EnergyLabel {
	return [3]EnergyLabel{EnergyHigh, EnergyMedium, EnergyLow}
}

func ParseEnergyLabel(s string) (EnergyLabel, error) {
	switch EnergyLabel(s) {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return EnergyLabel(s), nil
	}
	return "", &ParseError{Input: s, Reason: "unknown energy label"}
}

func (l EnergyLabel) String() string {
	return string(l)
}

func (l EnergyLabel) Valid() bool {
	switch l {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return true
	}
	return false
}

// Precedence is the label's index in canonical order.
func (l EnergyLabel) Precedence() int {
	switch l {
	case EnergyHigh:
		return 0
	case EnergyMedium:
		return 1
	default:
		return 2
	}
}

// EnergyBlock is one named time window of the day schedule.
type EnergyBlock struct {
	Label EnergyLabel `json:"energy_type"`
	Range TimeRange   `json:"range"`
}

// BlockTriple holds the day's three block ranges, exactly one per label.
type BlockTriple struct {
	High   TimeRange
	Medium TimeRange
	Low    TimeRange
}

func (b BlockTriple) Range(label EnergyLabel) TimeRange {
	switch label {
	case EnergyHigh:
		return b.High
	case EnergyMedium:
		return b.Medium
	default:
		return b.Low
	}
}

func (b *BlockTriple) SetRange(label EnergyLabel, r TimeRange) {
	switch label {
	case EnergyHigh:
		b.High = r
	case EnergyMedium:
		b.Medium = r
	default:
		b.Low = r
	}
}

// Blocks returns the triple as labelled blocks in canonical order.
func (b BlockTriple) Blocks() []EnergyBlock {
	blocks := make([]EnergyBlock, 0, 3)
	for _, label := range EnergyLabels() {
		blocks = append(blocks, EnergyBlock{Label: label, Range: b.Range(label)})
	}
	return blocks
}
