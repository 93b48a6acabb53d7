package planning

import (
	"sort"
	"time"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
)

// stopSlice is the portion of a stop's dwell time falling on one local date.
type stopSlice struct {
	stop         *plans.Stop
	dayArrival   time.Time
	dayDeparture time.Time
}

// driveSlice is the portion of the drive between two consecutive stops falling
// on one local date. driveHours/driveMiles describe the whole drive interval
// so per-day mileage can be attributed proportionally.
type driveSlice struct {
	fromStop   *plans.Stop
	toStop     *plans.Stop
	dayStart   time.Time
	dayEnd     time.Time
	driveHours float64
	driveMiles float64
}

// dayEvents collects everything that happens on one local calendar date.
// date is local midnight at the start of the day.
type dayEvents struct {
	date        time.Time
	stopSlices  []stopSlice
	driveSlices []driveSlice
}

// localMidnight truncates t to midnight in location.
func localMidnight(t time.Time, location *time.Location) time.Time {
	local := t.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}

// eachDaySlice invokes fn once per local date the [start, end) interval
// touches, passing the date's midnight and the clipped slice bounds.
// Zero-length slices are skipped.
func eachDaySlice(start time.Time, end time.Time, location *time.Location,
	fn func(dayStart time.Time, sliceStart time.Time, sliceEnd time.Time)) {

	if !end.After(start) {
		return
	}
	dayStart := localMidnight(start, location)
	for dayStart.Before(end) {
		nextDay := dayStart.AddDate(0, 0, 1)

		sliceStart := start
		if dayStart.After(sliceStart) {
			sliceStart = dayStart
		}
		sliceEnd := end
		if nextDay.Before(sliceEnd) {
			sliceEnd = nextDay
		}
		if sliceEnd.After(sliceStart) {
			fn(dayStart, sliceStart, sliceEnd)
		}
		dayStart = nextDay
	}
}

// projectDays splits the stop list and the implied drive intervals between
// consecutive stops on local midnight boundaries, producing one dayEvents per
// calendar date the plan touches, in date order.
func projectDays(stops []*plans.Stop, location *time.Location) []*dayEvents {
	byDate := make(map[int64]*dayEvents)

	dayFor := func(dayStart time.Time) *dayEvents {
		day, present := byDate[dayStart.Unix()]
		if !present {
			day = &dayEvents{date: dayStart}
			byDate[dayStart.Unix()] = day
		}
		return day
	}

	for i, stop := range stops {
		eachDaySlice(stop.ArrivalTime, stop.DepartureTime, location,
			func(dayStart, sliceStart, sliceEnd time.Time) {
				day := dayFor(dayStart)
				day.stopSlices = append(day.stopSlices, stopSlice{
					stop:         stop,
					dayArrival:   sliceStart,
					dayDeparture: sliceEnd,
				})
			})

		if i == 0 {
			continue
		}
		previous := stops[i-1]
		driveHours := stop.ArrivalTime.Sub(previous.DepartureTime).Hours()
		driveMiles := stop.CumulativeMiles - previous.CumulativeMiles
		eachDaySlice(previous.DepartureTime, stop.ArrivalTime, location,
			func(dayStart, sliceStart, sliceEnd time.Time) {
				day := dayFor(dayStart)
				day.driveSlices = append(day.driveSlices, driveSlice{
					fromStop:   previous,
					toStop:     stop,
					dayStart:   sliceStart,
					dayEnd:     sliceEnd,
					driveHours: driveHours,
					driveMiles: driveMiles,
				})
			})
	}

	results := make([]*dayEvents, 0, len(byDate))
	for _, day := range byDate {
		results = append(results, day)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].date.Before(results[j].date)
	})
	return results
}
