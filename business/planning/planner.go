// Package planning generates hours-of-service compliant trip plans: an
// ordered itinerary of stops with every mandatory break and fuel stop
// inserted, projected onto per-day ELD logs with duty-status timelines.
package planning

import (
	"context"
	"fmt"
	logger "log"
	"math"
	"time"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
	"github.com/OpenRoadTools/haulcast/business/hos"
	"github.com/OpenRoadTools/haulcast/business/mapping"
)

// remainingEpsilon absorbs floating point drift when the traversal loop
// subtracts driven miles from the remaining leg distance.
const remainingEpsilon = 1e-9

// Planner turns a TripInput into a PlanResult. A Planner is stateless across
// calls and safe for concurrent use; each Plan call owns its simulation state.
type Planner struct {
	log      *logger.Logger
	provider mapping.Provider
	rules    hos.Rules
	holidays *facilityHolidayCalendar
}

// MakePlanner creates a Planner applying the 70/8 property-carrying rules.
func MakePlanner(log *logger.Logger, provider mapping.Provider) *Planner {
	return &Planner{
		log:      log,
		provider: provider,
		rules:    hos.PropertyCarrying70,
		holidays: makeFacilityHolidayCalendar(),
	}
}

// Plan validates the input, checks cycle feasibility against the base route,
// simulates the drive with all mandatory stops, and builds the daily logs.
// On any error nothing partial is returned.
func (p *Planner) Plan(ctx context.Context, input TripInput) (*PlanResult, error) {
	if err := validateInput(input, p.rules.MaxCycleHours); err != nil {
		return nil, err
	}

	baseRoute, err := p.provider.Route(ctx, []mapping.Location{input.Current, input.Pickup, input.Dropoff})
	if err != nil {
		return nil, err
	}
	if len(baseRoute.Legs) < 2 {
		return nil, &mapping.Error{Op: "route",
			Err: fmt.Errorf("expected 2 legs for 3 waypoints, got %d", len(baseRoute.Legs))}
	}

	// Feasibility gate: rough driving time alone must fit the cycle hours left.
	available := p.rules.MaxCycleHours - input.CycleHoursUsed
	if available < baseRoute.DurationHours {
		return nil, &InfeasibleCycleError{
			NeededHours:    baseRoute.DurationHours,
			AvailableHours: available,
		}
	}

	stops := p.simulate(ctx, input, baseRoute)

	days := projectDays(stops, input.PlannedStart.Location())
	dailyLogs, err := buildDailyLogs(days)
	if err != nil {
		return nil, err
	}

	result := PlanResult{
		Route:        p.summarize(input, baseRoute, stops),
		Stops:        stops,
		DailyLogs:    dailyLogs,
		DaysRequired: len(dailyLogs),
		Advisories:   p.advisories(stops),
	}
	return &result, nil
}

// simulation carries the planner's working state for one Plan call. Time only
// moves forward; stops are append-only.
type simulation struct {
	rules    hos.Rules
	now      time.Time
	cumMiles float64
	counters hos.Counters
	stops    []*plans.Stop
}

// addStop appends a stop at the simulation's current time and position,
// advances the clock past it, and applies its counter effects.
func (s *simulation) addStop(stopType plans.StopType, location mapping.Location,
	durationMinutes int, description string) {

	previousMiles := 0.0
	if len(s.stops) > 0 {
		previousMiles = s.stops[len(s.stops)-1].CumulativeMiles
	}
	stop := plans.Stop{
		Sequence:          len(s.stops),
		StopType:          stopType,
		Address:           location.Address,
		Lat:               location.Lat,
		Lng:               location.Lng,
		ArrivalTime:       s.now,
		DepartureTime:     s.now.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes:   durationMinutes,
		Description:       description,
		MilesFromPrevious: s.cumMiles - previousMiles,
		CumulativeMiles:   s.cumMiles,
	}
	s.stops = append(s.stops, &stop)
	s.now = stop.DepartureTime
	s.counters.DwellAt(stopType, durationMinutes)
}

// drive advances the clock, odometer and duty counters by a stretch of driving.
func (s *simulation) drive(hours float64, miles float64) {
	s.now = s.now.Add(time.Duration(hours * float64(time.Hour)))
	s.cumMiles += miles
	s.counters.DriveFor(hours, miles)
}

// simulate emits the full stop itinerary: the trip start marker, the drive to
// pickup as one interval at the route's own pace, then the pickup-to-dropoff
// leg traversed with mandatory breaks and fuel stops inserted.
func (p *Planner) simulate(ctx context.Context, input TripInput, baseRoute *mapping.Route) []*plans.Stop {
	s := simulation{
		rules: p.rules,
		now:   input.PlannedStart,
	}

	s.addStop(plans.StopTypeCurrent, input.Current, 0, "Trip start location")

	legToPickup := baseRoute.Legs[0]
	if legToPickup.DurationHours > 0 || legToPickup.DistanceMiles > 0 {
		s.drive(legToPickup.DurationHours, legToPickup.DistanceMiles)
	}
	s.addStop(plans.StopTypePickup, input.Pickup, p.rules.PickupMinutes, "Load pickup (1 hour)")

	p.traverseLeg(ctx, &s, baseRoute.Geometry, baseRoute.Legs[1].DistanceMiles)

	s.addStop(plans.StopTypeDropoff, input.Dropoff, p.rules.DropoffMinutes, "Load delivery (1 hour)")
	return s.stops
}

// traverseLeg drives the pickup-to-dropoff leg greedily: drive as long as any
// budget allows, then insert the first stop the budgets demand. Break checks
// outrank the fuel check when both trigger on the same iteration.
func (p *Planner) traverseLeg(ctx context.Context, s *simulation, geometry [][]float64, legMiles float64) {
	remaining := legMiles
	covered := 0.0

	for remaining > 0 {
		switch {
		case s.counters.SinceBreak >= p.rules.DrivingHoursBeforeBreak:
			p.insertRest(ctx, s, geometry, covered, legMiles, plans.StopTypeBreak30Min)

		case s.counters.DayDriving >= p.rules.MaxDrivingHoursPerDay ||
			s.counters.DayOnDuty >= p.rules.MaxOnDutyHoursPerDay:
			p.insertRest(ctx, s, geometry, covered, legMiles, plans.StopTypeBreak10Hr)

		case s.counters.SinceFuel >= p.rules.FuelIntervalMiles:
			p.insertFuel(ctx, s, geometry, covered, legMiles)

		default:
			hoursCanDrive := math.Min(p.rules.DrivingHoursBeforeBreak-s.counters.SinceBreak,
				math.Min(p.rules.MaxDrivingHoursPerDay-s.counters.DayDriving,
					p.rules.MaxOnDutyHoursPerDay-s.counters.DayOnDuty))
			milesToDrive := math.Min(hoursCanDrive*p.rules.AverageSpeedMPH,
				math.Min(p.rules.FuelIntervalMiles-s.counters.SinceFuel, remaining))

			s.drive(milesToDrive/p.rules.AverageSpeedMPH, milesToDrive)
			covered += milesToDrive
			remaining -= milesToDrive
			if remaining < remainingEpsilon {
				remaining = 0
			}
		}
	}
}

// insertRest places a 30-minute break or a 10-hour rest at the nearest rest
// POI to the current point along the leg.
func (p *Planner) insertRest(ctx context.Context, s *simulation, geometry [][]float64,
	covered float64, legMiles float64, stopType plans.StopType) {

	lat, lng := mapping.PointAlong(geometry, covered, legMiles)
	location := p.provider.FindNearestPOI(ctx, lat, lng, mapping.POIKindRest)

	if stopType == plans.StopTypeBreak30Min {
		s.addStop(stopType, location, p.rules.Break30Minutes, "Mandatory 30-minute break")
		return
	}
	s.addStop(stopType, location, p.rules.Break10HrMinutes, "Mandatory 10-hour off-duty rest period")
}

// insertFuel places a refueling stop at the nearest fuel POI to the current
// point along the leg.
func (p *Planner) insertFuel(ctx context.Context, s *simulation, geometry [][]float64,
	covered float64, legMiles float64) {

	lat, lng := mapping.PointAlong(geometry, covered, legMiles)
	location := p.provider.FindNearestPOI(ctx, lat, lng, mapping.POIKindFuel)
	s.addStop(plans.StopTypeFuel, location, p.rules.FuelStopMinutes, "Refueling stop")
}

// summarize derives the route-level totals and compliance status from the
// finished stop list.
func (p *Planner) summarize(input TripInput, baseRoute *mapping.Route, stops []*plans.Stop) *plans.RoutePlan {
	totalDriving := 0.0
	onDutyNotDriving := 0.0
	for i, stop := range stops {
		if i > 0 {
			totalDriving += stop.ArrivalTime.Sub(stops[i-1].DepartureTime).Hours()
		}
		switch stop.StopType {
		case plans.StopTypePickup, plans.StopTypeDropoff, plans.StopTypeFuel:
			onDutyNotDriving += float64(stop.DurationMinutes) / 60.0
		}
	}

	totalOnDuty := totalDriving + onDutyNotDriving
	totalDuration := stops[len(stops)-1].DepartureTime.Sub(stops[0].ArrivalTime).Hours()
	totalOffDuty := totalDuration - totalOnDuty

	available := p.rules.MaxCycleHours - input.CycleHoursUsed
	status := plans.ComplianceCompliant
	slack := available - totalOnDuty
	switch {
	case slack < 0:
		status = plans.ComplianceNonCompliant
	case slack < 5:
		status = plans.ComplianceWarning
	}

	return &plans.RoutePlan{
		TotalDistanceMiles:  round2(stops[len(stops)-1].CumulativeMiles),
		TotalDurationHours:  round2(totalDuration),
		TotalDrivingHours:   round2(totalDriving),
		TotalOnDutyHours:    round2(totalOnDuty),
		TotalOffDutyHours:   round2(totalOffDuty),
		CycleHoursAfterTrip: round2(input.CycleHoursUsed + totalOnDuty),
		ComplianceStatus:    status,
		Geometry:            plans.Geometry(baseRoute.Geometry),
	}
}

// advisories flags pickup and dropoff stops whose local date falls on a US
// federal holiday, when shipper and receiver facilities are likely closed.
func (p *Planner) advisories(stops []*plans.Stop) []string {
	var results []string
	for _, stop := range stops {
		if stop.StopType != plans.StopTypePickup && stop.StopType != plans.StopTypeDropoff {
			continue
		}
		if name, isHoliday := p.holidays.holidayName(stop.ArrivalTime); isHoliday {
			results = append(results, fmt.Sprintf("%s at %s arrives on %s (%s); facility may be closed",
				stop.StopType, stop.Address, stop.ArrivalTime.Format("2006-01-02"), name))
		}
	}
	return results
}
