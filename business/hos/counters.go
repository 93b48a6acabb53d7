package hos

import (
	"github.com/OpenRoadTools/haulcast/business/data/plans"
)

// Counters tracks the duty budgets consumed since the relevant reset points.
// All time and counter advancement during planning goes through DriveFor and
// DwellAt so each counter's behavior per operation stays in one place.
//
//	operation        DayDriving  DayOnDuty  SinceBreak  SinceFuel
//	DriveFor         +h          +h         +h          +mi
//	pickup/dropoff   -           +h         -           -
//	fuel             -           +h         -           reset
//	30-minute break  -           -          reset       -
//	10-hour rest     reset       reset      reset       -
type Counters struct {
	// DayDriving is driving hours since the last 10-hour reset.
	DayDriving float64
	// DayOnDuty is on-duty hours since the last 10-hour reset.
	DayOnDuty float64
	// SinceBreak is driving hours since the last 30-minute break or reset.
	SinceBreak float64
	// SinceFuel is miles driven since the last fuel stop.
	SinceFuel float64
}

// DriveFor advances every counter by a stretch of driving.
func (c *Counters) DriveFor(hours float64, miles float64) {
	c.DayDriving += hours
	c.DayOnDuty += hours
	c.SinceBreak += hours
	c.SinceFuel += miles
}

// DwellAt applies the counter effects of spending minutes stopped at a stop of
// the given type. A 30-minute break is off-duty and does not advance the
// on-duty clock; a 10-hour rest restarts the duty day. Neither rest refills
// the tank.
func (c *Counters) DwellAt(stopType plans.StopType, minutes int) {
	hours := float64(minutes) / 60.0

	switch stopType {
	case plans.StopTypePickup, plans.StopTypeDropoff:
		c.DayOnDuty += hours
	case plans.StopTypeFuel:
		c.DayOnDuty += hours
		c.SinceFuel = 0
	case plans.StopTypeBreak30Min:
		c.SinceBreak = 0
	case plans.StopTypeBreak10Hr:
		c.DayDriving = 0
		c.DayOnDuty = 0
		c.SinceBreak = 0
	case plans.StopTypeCurrent:
		// trip start marker, nothing accrues
	}
}
