// Package hos declares the FMCSA hours-of-service limits for property-carrying
// drivers on the 70 hour / 8 day cycle, and the duty counters the planner
// advances while simulating a trip.
package hos

// Rules is the immutable table of hours-of-service limits the planner applies.
// Declared as data so regulatory tuning does not touch the state machine.
type Rules struct {
	// MaxDrivingHoursPerDay is the driving allowed between 10-hour resets.
	MaxDrivingHoursPerDay float64
	// MaxOnDutyHoursPerDay is the on-duty time allowed between 10-hour resets.
	MaxOnDutyHoursPerDay float64
	// DrivingHoursBeforeBreak is cumulative driving allowed since the last
	// 30-minute break.
	DrivingHoursBeforeBreak float64
	// RequiredOffDutyHours is the length of the rest that resets the duty day.
	RequiredOffDutyHours float64
	// MaxCycleHours is the on-duty cap over the rolling cycle window.
	MaxCycleHours float64
	// CycleDays is the length of the rolling cycle window.
	CycleDays int
	// AverageSpeedMPH converts between planned driving hours and miles.
	AverageSpeedMPH float64
	// FuelIntervalMiles is the distance between fuel stops.
	FuelIntervalMiles float64

	FuelStopMinutes  int
	Break30Minutes   int
	Break10HrMinutes int
	PickupMinutes    int
	DropoffMinutes   int
}

// PropertyCarrying70 is the rule set for property-carrying drivers on the
// 70/8 cycle.
var PropertyCarrying70 = Rules{
	MaxDrivingHoursPerDay:   11,
	MaxOnDutyHoursPerDay:    14,
	DrivingHoursBeforeBreak: 8,
	RequiredOffDutyHours:    10,
	MaxCycleHours:           70,
	CycleDays:               8,
	AverageSpeedMPH:         55,
	FuelIntervalMiles:       1000,
	FuelStopMinutes:         30,
	Break30Minutes:          30,
	Break10HrMinutes:        600,
	PickupMinutes:           60,
	DropoffMinutes:          60,
}
