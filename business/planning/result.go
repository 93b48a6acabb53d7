package planning

import (
	"fmt"
	"math"
	"time"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
	"github.com/OpenRoadTools/haulcast/business/mapping"
)

// TripInput is everything required to plan a trip. Locations must already be
// geocoded; PlannedStart's timezone is the local calendar used for daily log
// boundaries.
type TripInput struct {
	Name           string
	Current        mapping.Location
	Pickup         mapping.Location
	Dropoff        mapping.Location
	CycleHoursUsed float64
	PlannedStart   time.Time
}

// PlanResult is the complete outcome of planning one trip. It is produced as
// a single value: callers only see it when planning succeeded end to end.
type PlanResult struct {
	Route        *plans.RoutePlan   `json:"route"`
	Stops        []*plans.Stop      `json:"stops"`
	DailyLogs    []*plans.DailyLog  `json:"daily_logs"`
	DaysRequired int                `json:"days_required"`
	Advisories   []string           `json:"advisories,omitempty"`
}

// InvalidInputError rejects a TripInput before any simulation runs.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid trip input: %s %s", e.Field, e.Reason)
}

// InfeasibleCycleError reports a trip whose driving alone exceeds the hours
// left in the driver's 70-hour cycle.
type InfeasibleCycleError struct {
	NeededHours    float64
	AvailableHours float64
}

func (e *InfeasibleCycleError) Error() string {
	return fmt.Sprintf("insufficient cycle hours: need ~%.1fh driving but only %.1fh available",
		e.NeededHours, e.AvailableHours)
}

// TimelineError reports a violated daily-log invariant. It signals a planner
// bug and is never repaired silently.
type TimelineError struct {
	DayNumber int
	Detail    string
}

func (e *TimelineError) Error() string {
	return fmt.Sprintf("daily log timeline invariant violated on day %d: %s", e.DayNumber, e.Detail)
}

func validateInput(input TripInput, maxCycleHours float64) error {
	if !input.Current.Valid() {
		return &InvalidInputError{Field: "current location", Reason: "coordinates out of range"}
	}
	if !input.Pickup.Valid() {
		return &InvalidInputError{Field: "pickup location", Reason: "coordinates out of range"}
	}
	if !input.Dropoff.Valid() {
		return &InvalidInputError{Field: "dropoff location", Reason: "coordinates out of range"}
	}
	if input.CycleHoursUsed < 0 || input.CycleHoursUsed > maxCycleHours {
		return &InvalidInputError{Field: "cycle hours used",
			Reason: fmt.Sprintf("must be between 0 and %.0f", maxCycleHours)}
	}
	if input.Pickup.SamePoint(input.Dropoff) {
		return &InvalidInputError{Field: "dropoff location", Reason: "must differ from pickup location"}
	}
	if input.PlannedStart.IsZero() {
		return &InvalidInputError{Field: "planned start", Reason: "is required"}
	}
	return nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
