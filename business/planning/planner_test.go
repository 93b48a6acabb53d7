package planning

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
	"github.com/OpenRoadTools/haulcast/business/mapping"
)

func TestPlanner_Plan_shortTrip(t *testing.T) {
	// driver is already at the pickup, one hour of driving to the dropoff
	provider := &fakeProvider{route: fakeRoute(0, 0, 55, 1)}
	planner := MakePlanner(testLogger(), provider)
	start := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)

	result, err := planner.Plan(context.Background(), TripInput{
		Name:         "short haul",
		Current:      testPickup,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: start,
	})
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}

	wantTypes := []plans.StopType{plans.StopTypeCurrent, plans.StopTypePickup, plans.StopTypeDropoff}
	assertStopTypes(t, result.Stops, wantTypes)

	pickup := result.Stops[1]
	if !pickup.ArrivalTime.Equal(start) || !pickup.DepartureTime.Equal(start.Add(time.Hour)) {
		t.Errorf("pickup window = %v to %v, want 06:00 to 07:00", pickup.ArrivalTime, pickup.DepartureTime)
	}
	dropoff := result.Stops[2]
	if !dropoff.ArrivalTime.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("dropoff arrival = %v, want 08:00", dropoff.ArrivalTime)
	}
	if dropoff.CumulativeMiles != 55 || dropoff.MilesFromPrevious != 55 {
		t.Errorf("dropoff miles = %v cumulative, %v from previous, want 55 and 55",
			dropoff.CumulativeMiles, dropoff.MilesFromPrevious)
	}

	route := result.Route
	if route.TotalDistanceMiles != 55 || route.TotalDurationHours != 3 ||
		route.TotalDrivingHours != 1 || route.TotalOnDutyHours != 3 || route.TotalOffDutyHours != 0 {
		t.Errorf("route totals = %+v, want 55 miles over 3 hours, 1 driving, 3 on duty, 0 off duty", route)
	}
	if route.CycleHoursAfterTrip != 3 {
		t.Errorf("CycleHoursAfterTrip = %v, want 3", route.CycleHoursAfterTrip)
	}
	if route.ComplianceStatus != plans.ComplianceCompliant {
		t.Errorf("ComplianceStatus = %v, want compliant", route.ComplianceStatus)
	}

	if result.DaysRequired != 1 || len(result.DailyLogs) != 1 {
		t.Errorf("DaysRequired = %d with %d logs, want 1 and 1", result.DaysRequired, len(result.DailyLogs))
		return
	}
	day := result.DailyLogs[0]
	if day.TotalDrivingHours != 1 || day.TotalOnDutyHours != 2 ||
		day.TotalOffDutyHours != 21 || day.TotalSleeperHours != 0 {
		t.Errorf("day 1 totals = %+v, want 1 driving, 2 on duty, 21 off duty, 0 sleeper", day)
	}
	if day.TotalMiles != 55 {
		t.Errorf("day 1 miles = %v, want 55", day.TotalMiles)
	}
	if day.StartLocation != testPickup.Address || day.EndLocation != testDropoff.Address {
		t.Errorf("day 1 runs %s to %s, want %s to %s",
			day.StartLocation, day.EndLocation, testPickup.Address, testDropoff.Address)
	}
}

func TestPlanner_Plan_insertsThirtyMinuteBreak(t *testing.T) {
	// ten hours of driving on the delivery leg forces exactly one break
	provider := &fakeProvider{route: fakeRoute(55, 1, 550, 10)}
	planner := MakePlanner(testLogger(), provider)
	start := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)

	result, err := planner.Plan(context.Background(), TripInput{
		Current:      testCurrent,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: start,
	})
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}

	wantTypes := []plans.StopType{plans.StopTypeCurrent, plans.StopTypePickup,
		plans.StopTypeBreak30Min, plans.StopTypeDropoff}
	assertStopTypes(t, result.Stops, wantTypes)

	// one hour to the pickup, one hour loading, then seven hours of driving
	// exhausts the eight hour break clock
	breakStop := result.Stops[2]
	if !breakStop.ArrivalTime.Equal(start.Add(9 * time.Hour)) {
		t.Errorf("break arrival = %v, want 15:00", breakStop.ArrivalTime)
	}
	if breakStop.DurationMinutes != 30 {
		t.Errorf("break duration = %d minutes, want 30", breakStop.DurationMinutes)
	}
	if !strings.Contains(breakStop.Address, "Rest Stop") {
		t.Errorf("break address = %q, want a synthesized rest stop", breakStop.Address)
	}
	if result.DaysRequired != 1 {
		t.Errorf("DaysRequired = %d, want 1", result.DaysRequired)
	}
}

func TestPlanner_Plan_insertsTenHourRest(t *testing.T) {
	// fourteen hours of driving cannot fit one duty day
	provider := &fakeProvider{route: fakeRoute(0, 0, 770, 14)}
	planner := MakePlanner(testLogger(), provider)
	start := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)

	result, err := planner.Plan(context.Background(), TripInput{
		Current:        testPickup,
		Pickup:         testPickup,
		Dropoff:        testDropoff,
		CycleHoursUsed: 10,
		PlannedStart:   start,
	})
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}

	wantTypes := []plans.StopType{plans.StopTypeCurrent, plans.StopTypePickup,
		plans.StopTypeBreak30Min, plans.StopTypeBreak10Hr, plans.StopTypeDropoff}
	assertStopTypes(t, result.Stops, wantTypes)

	rest := result.Stops[3]
	if rest.DurationMinutes != 600 {
		t.Errorf("rest duration = %d minutes, want 600", rest.DurationMinutes)
	}
	// eleven hours of driving plus the pickup and break end the duty day at 18:30
	if !rest.ArrivalTime.Equal(start.Add(12*time.Hour + 30*time.Minute)) {
		t.Errorf("rest arrival = %v, want 18:30", rest.ArrivalTime)
	}

	if result.DaysRequired != 2 || len(result.DailyLogs) != 2 {
		t.Errorf("DaysRequired = %d with %d logs, want 2 days", result.DaysRequired, len(result.DailyLogs))
		return
	}
	day1, day2 := result.DailyLogs[0], result.DailyLogs[1]
	if day1.TotalDrivingHours != 11 || day1.TotalOnDutyHours != 1 ||
		day1.TotalSleeperHours != 5.5 || day1.TotalOffDutyHours != 6.5 {
		t.Errorf("day 1 totals = %+v, want 11 driving, 1 on duty, 5.5 sleeper, 6.5 off duty", day1)
	}
	if day2.TotalDrivingHours != 3 || day2.TotalOnDutyHours != 1 ||
		day2.TotalSleeperHours != 4.5 || day2.TotalOffDutyHours != 15.5 {
		t.Errorf("day 2 totals = %+v, want 3 driving, 1 on duty, 4.5 sleeper, 15.5 off duty", day2)
	}
}

func TestPlanner_Plan_insertsFuelStops(t *testing.T) {
	provider := &fakeProvider{route: fakeRoute(0, 0, 1100, 20)}
	planner := MakePlanner(testLogger(), provider)

	result, err := planner.Plan(context.Background(), TripInput{
		Current:      testPickup,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}

	var fuelStops []*plans.Stop
	for _, stop := range result.Stops {
		if stop.StopType == plans.StopTypeFuel {
			fuelStops = append(fuelStops, stop)
		}
	}
	if len(fuelStops) != 1 {
		t.Errorf("found %d fuel stops over 1100 miles, want 1", len(fuelStops))
		return
	}
	if fuelStops[0].CumulativeMiles != 1000 {
		t.Errorf("fuel stop at mile %v, want 1000", fuelStops[0].CumulativeMiles)
	}

	// no stretch between fuel resets may exceed the tank range
	lastFuelMiles := 0.0
	for _, stop := range result.Stops {
		if stop.CumulativeMiles-lastFuelMiles > 1000+1e-6 {
			t.Errorf("stop %d is %v miles past the last fuel reset", stop.Sequence,
				stop.CumulativeMiles-lastFuelMiles)
		}
		if stop.StopType == plans.StopTypeFuel {
			lastFuelMiles = stop.CumulativeMiles
		}
	}
	assertStopInvariants(t, result.Stops)
}

func TestPlanner_Plan_longHaul(t *testing.T) {
	// 2500 miles of driving spans multiple duty days and fuel intervals
	provider := &fakeProvider{route: fakeRoute(0, 0, 2500, 45)}
	planner := MakePlanner(testLogger(), provider)

	result, err := planner.Plan(context.Background(), TripInput{
		Current:      testPickup,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}
	assertStopInvariants(t, result.Stops)

	counts := map[plans.StopType]int{}
	for _, stop := range result.Stops {
		counts[stop.StopType]++
	}
	if counts[plans.StopTypeBreak10Hr] < 2 {
		t.Errorf("found %d ten hour rests, want at least 2", counts[plans.StopTypeBreak10Hr])
	}
	if counts[plans.StopTypeFuel] < 2 {
		t.Errorf("found %d fuel stops, want at least 2", counts[plans.StopTypeFuel])
	}
	if result.DaysRequired < 5 {
		t.Errorf("DaysRequired = %d, want at least 5", result.DaysRequired)
	}

	// per day driving totals round-trip to the plan-wide total
	dailyDriving := 0.0
	for _, day := range result.DailyLogs {
		dailyDriving += day.TotalDrivingHours

		segmentHours := 0.0
		for _, segment := range day.Segments {
			segmentHours += segment.EndTime.Sub(segment.StartTime).Hours()
		}
		if math.Abs(segmentHours-24) > 0.02 {
			t.Errorf("day %d segments cover %v hours, want 24", day.DayNumber, segmentHours)
		}
	}
	if math.Abs(dailyDriving-result.Route.TotalDrivingHours) > 0.02 {
		t.Errorf("daily driving totals sum to %v, route total is %v",
			dailyDriving, result.Route.TotalDrivingHours)
	}
}

func TestPlanner_Plan_infeasibleCycle(t *testing.T) {
	provider := &fakeProvider{route: fakeRoute(55, 1, 550, 10)}
	planner := MakePlanner(testLogger(), provider)

	_, err := planner.Plan(context.Background(), TripInput{
		Current:        testCurrent,
		Pickup:         testPickup,
		Dropoff:        testDropoff,
		CycleHoursUsed: 60,
		PlannedStart:   time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
	})
	var infeasible *InfeasibleCycleError
	if !errors.As(err, &infeasible) {
		t.Errorf("Plan() error = %v, want InfeasibleCycleError", err)
		return
	}
	if infeasible.NeededHours != 11 || infeasible.AvailableHours != 10 {
		t.Errorf("InfeasibleCycleError = %+v, want 11 needed, 10 available", infeasible)
	}
}

func TestPlanner_Plan_exactlyEnoughCycleHours(t *testing.T) {
	provider := &fakeProvider{route: fakeRoute(55, 1, 550, 10)}
	planner := MakePlanner(testLogger(), provider)

	_, err := planner.Plan(context.Background(), TripInput{
		Current:        testCurrent,
		Pickup:         testPickup,
		Dropoff:        testDropoff,
		CycleHoursUsed: 59,
		PlannedStart:   time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Errorf("Plan() with exactly enough cycle hours returned %v", err)
	}
}

func TestPlanner_Plan_invalidInput(t *testing.T) {
	start := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)
	valid := TripInput{
		Current:      testCurrent,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: start,
	}

	tests := []struct {
		name      string
		mutate    func(input *TripInput)
		wantField string
	}{
		{
			name:      "latitude out of range",
			mutate:    func(input *TripInput) { input.Current.Lat = 95 },
			wantField: "current location",
		},
		{
			name:      "negative cycle hours",
			mutate:    func(input *TripInput) { input.CycleHoursUsed = -1 },
			wantField: "cycle hours used",
		},
		{
			name:      "cycle hours beyond the maximum",
			mutate:    func(input *TripInput) { input.CycleHoursUsed = 70.5 },
			wantField: "cycle hours used",
		},
		{
			name:      "pickup and dropoff at the same point",
			mutate:    func(input *TripInput) { input.Dropoff = testPickup },
			wantField: "dropoff location",
		},
		{
			name:      "missing planned start",
			mutate:    func(input *TripInput) { input.PlannedStart = time.Time{} },
			wantField: "planned start",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{route: fakeRoute(0, 0, 55, 1)}
			planner := MakePlanner(testLogger(), provider)
			input := valid
			tt.mutate(&input)

			_, err := planner.Plan(context.Background(), input)
			var invalidInput *InvalidInputError
			if !errors.As(err, &invalidInput) {
				t.Errorf("Plan() error = %v, want InvalidInputError", err)
				return
			}
			if invalidInput.Field != tt.wantField {
				t.Errorf("InvalidInputError.Field = %q, want %q", invalidInput.Field, tt.wantField)
			}
		})
	}
}

func TestPlanner_Plan_providerFailure(t *testing.T) {
	provider := &fakeProvider{routeErr: &mapping.Error{Op: "route", Err: errors.New("upstream down")}}
	planner := MakePlanner(testLogger(), provider)

	_, err := planner.Plan(context.Background(), TripInput{
		Current:      testCurrent,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
	})
	var mapErr *mapping.Error
	if !errors.As(err, &mapErr) {
		t.Errorf("Plan() error = %v, want *mapping.Error", err)
	}
}

func TestPlanner_Plan_deterministic(t *testing.T) {
	provider := &fakeProvider{route: fakeRoute(0, 0, 1100, 20)}
	planner := MakePlanner(testLogger(), provider)
	input := TripInput{
		Current:      testPickup,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
	}

	first, err := planner.Plan(context.Background(), input)
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}
	second, err := planner.Plan(context.Background(), input)
	if err != nil {
		t.Errorf("Plan() unexpected error on second run: %v", err)
		return
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("planning the same input twice produced different results")
	}
}

func TestPlanner_Plan_holidayAdvisory(t *testing.T) {
	provider := &fakeProvider{route: fakeRoute(0, 0, 55, 1)}
	planner := MakePlanner(testLogger(), provider)

	result, err := planner.Plan(context.Background(), TripInput{
		Current:      testPickup,
		Pickup:       testPickup,
		Dropoff:      testDropoff,
		PlannedStart: time.Date(2025, 7, 4, 6, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Errorf("Plan() unexpected error: %v", err)
		return
	}
	if len(result.Advisories) == 0 {
		t.Errorf("expected a facility advisory for a July 4th delivery")
		return
	}
	if !strings.Contains(result.Advisories[0], "Independence Day") {
		t.Errorf("advisory = %q, want mention of Independence Day", result.Advisories[0])
	}
}

// assertStopTypes checks the itinerary's stop types in order and that
// sequences are dense from zero.
func assertStopTypes(t *testing.T, stops []*plans.Stop, want []plans.StopType) {
	t.Helper()
	got := make([]plans.StopType, 0, len(stops))
	for i, stop := range stops {
		got = append(got, stop.StopType)
		if stop.Sequence != i {
			t.Errorf("stop %d has sequence %d", i, stop.Sequence)
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stop types = %v, want %v", got, want)
	}
}

// assertStopInvariants checks time and mileage monotonicity across the itinerary.
func assertStopInvariants(t *testing.T, stops []*plans.Stop) {
	t.Helper()
	for i, stop := range stops {
		if stop.DepartureTime.Before(stop.ArrivalTime) {
			t.Errorf("stop %d departs before it arrives", i)
		}
		if i == 0 {
			continue
		}
		previous := stops[i-1]
		if stop.ArrivalTime.Before(previous.DepartureTime) {
			t.Errorf("stop %d arrives before stop %d departs", i, i-1)
		}
		if stop.CumulativeMiles < previous.CumulativeMiles {
			t.Errorf("stop %d cumulative miles decreased", i)
		}
		wantFromPrevious := stop.CumulativeMiles - previous.CumulativeMiles
		if math.Abs(stop.MilesFromPrevious-wantFromPrevious) > 1e-6 {
			t.Errorf("stop %d MilesFromPrevious = %v, want %v", i, stop.MilesFromPrevious, wantFromPrevious)
		}
	}
}
