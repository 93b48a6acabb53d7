package plans

import "testing"

func TestStatusForStopType(t *testing.T) {
	tests := []struct {
		stopType StopType
		want     DutyStatus
	}{
		{StopTypePickup, DutyStatusOnDutyNot},
		{StopTypeDropoff, DutyStatusOnDutyNot},
		{StopTypeFuel, DutyStatusOnDutyNot},
		{StopTypeBreak10Hr, DutyStatusSleeper},
		{StopTypeBreak30Min, DutyStatusOffDuty},
		{StopTypeCurrent, DutyStatusOffDuty},
	}
	for _, tt := range tests {
		t.Run(string(tt.stopType), func(t *testing.T) {
			if got := StatusForStopType(tt.stopType); got != tt.want {
				t.Errorf("StatusForStopType(%s) = %s, want %s", tt.stopType, got, tt.want)
			}
		})
	}
}
