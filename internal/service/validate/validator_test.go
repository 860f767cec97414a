package validate

import (
	"errors"
	"testing"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

func validSchedule() *domain.DaySchedule {
	return &domain.DaySchedule{
		WakeTime:  360,
		SleepTime: 1380,
		Blocks: domain.BlockTriple{
			High:   domain.TimeRange{Start: 360, End: 720},
			Medium: domain.TimeRange{Start: 720, End: 1080},
			Low:    domain.TimeRange{Start: 1080, End: 1320},
		},
	}
}

func TestValidateSchedule(t *testing.T) {
	v := NewValidator()

	t.Run("valid schedule passes", func(t *testing.T) {
		if err := v.ValidateSchedule(validSchedule()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrapping block is rejected", func(t *testing.T) {
		s := validSchedule()
		s.Blocks.Low = domain.TimeRange{Start: 1380, End: 60}

		err := v.ValidateSchedule(s)
		var rangeErr *domain.InvalidRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected InvalidRangeError, got %v", err)
		}
	})

	t.Run("zero-width block is rejected", func(t *testing.T) {
		s := validSchedule()
		s.Blocks.Medium = domain.TimeRange{Start: 720, End: 720}

		var rangeErr *domain.InvalidRangeError
		if err := v.ValidateSchedule(s); !errors.As(err, &rangeErr) {
			t.Fatalf("expected InvalidRangeError, got %v", err)
		}
	})

	t.Run("overlapping blocks are rejected", func(t *testing.T) {
		s := validSchedule()
		s.Blocks.Low = domain.TimeRange{Start: 700, End: 760} // inside high

		err := v.ValidateSchedule(s)
		var overlapErr *domain.UnresolvableOverlapError
		if !errors.As(err, &overlapErr) {
			t.Fatalf("expected UnresolvableOverlapError, got %v", err)
		}
		if overlapErr.Block != domain.EnergyLow {
			t.Errorf("offending block = %s, want low", overlapErr.Block)
		}
	})

	t.Run("sleep before wake is rejected", func(t *testing.T) {
		s := validSchedule()
		s.WakeTime = 1380
		s.SleepTime = 360

		var rangeErr *domain.InvalidRangeError
		if err := v.ValidateSchedule(s); !errors.As(err, &rangeErr) {
			t.Fatalf("expected InvalidRangeError, got %v", err)
		}
	})
}

func TestValidateCapacity(t *testing.T) {
	v := NewValidator()
	block := domain.EnergyBlock{
		Label: domain.EnergyHigh,
		Range: domain.TimeRange{Start: 360, End: 720}, // 360 minutes
	}

	tests := []struct {
		name       string
		durations  []int
		wantExcess int
	}{
		{name: "empty fits", durations: nil},
		{name: "under capacity", durations: []int{60, 90, 120}},
		{name: "exactly full", durations: []int{180, 180}},
		{name: "one minute over", durations: []int{181, 180}, wantExcess: 1},
		{name: "far over", durations: []int{300, 300, 300}, wantExcess: 540},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCapacity(block, tt.durations)
			if tt.wantExcess == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var capErr *domain.CapacityExceededError
			if !errors.As(err, &capErr) {
				t.Fatalf("expected CapacityExceededError, got %v", err)
			}
			if capErr.ExcessMinutes != tt.wantExcess {
				t.Errorf("excess = %d, want %d", capErr.ExcessMinutes, tt.wantExcess)
			}
			if capErr.Block != domain.EnergyHigh {
				t.Errorf("block = %s, want high", capErr.Block)
			}
		})
	}
}
