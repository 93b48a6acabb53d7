package hos

import (
	"reflect"
	"testing"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
)

func TestCounters_DriveFor(t *testing.T) {
	c := Counters{}
	c.DriveFor(2, 110)
	c.DriveFor(1.5, 82.5)

	want := Counters{DayDriving: 3.5, DayOnDuty: 3.5, SinceBreak: 3.5, SinceFuel: 192.5}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("DriveFor() = %+v, want %+v", c, want)
	}
}

func TestCounters_DwellAt(t *testing.T) {
	// counters after eight hours of driving with some fuel miles outstanding
	driven := Counters{DayDriving: 8, DayOnDuty: 9, SinceBreak: 8, SinceFuel: 440}

	tests := []struct {
		name     string
		stopType plans.StopType
		minutes  int
		want     Counters
	}{
		{
			name:     "pickup adds on duty time only",
			stopType: plans.StopTypePickup,
			minutes:  60,
			want:     Counters{DayDriving: 8, DayOnDuty: 10, SinceBreak: 8, SinceFuel: 440},
		},
		{
			name:     "dropoff adds on duty time only",
			stopType: plans.StopTypeDropoff,
			minutes:  60,
			want:     Counters{DayDriving: 8, DayOnDuty: 10, SinceBreak: 8, SinceFuel: 440},
		},
		{
			name:     "fuel stop is on duty and refills the tank",
			stopType: plans.StopTypeFuel,
			minutes:  30,
			want:     Counters{DayDriving: 8, DayOnDuty: 9.5, SinceBreak: 8, SinceFuel: 0},
		},
		{
			name:     "30 minute break resets the break clock off duty",
			stopType: plans.StopTypeBreak30Min,
			minutes:  30,
			want:     Counters{DayDriving: 8, DayOnDuty: 9, SinceBreak: 0, SinceFuel: 440},
		},
		{
			name:     "10 hour rest restarts the duty day but not the tank",
			stopType: plans.StopTypeBreak10Hr,
			minutes:  600,
			want:     Counters{DayDriving: 0, DayOnDuty: 0, SinceBreak: 0, SinceFuel: 440},
		},
		{
			name:     "trip start marker accrues nothing",
			stopType: plans.StopTypeCurrent,
			minutes:  0,
			want:     driven,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := driven
			c.DwellAt(tt.stopType, tt.minutes)
			if !reflect.DeepEqual(c, tt.want) {
				t.Errorf("DwellAt(%s, %d) = %+v, want %+v", tt.stopType, tt.minutes, c, tt.want)
			}
		})
	}
}
