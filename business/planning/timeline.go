package planning

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
)

// timelineEvent is a stop or drive slice normalized for timeline assembly.
type timelineEvent struct {
	start    time.Time
	end      time.Time
	isStop   bool
	status   plans.DutyStatus
	location string
	lat      *float64
	lng      *float64
	remarks  string
}

// buildDailyLogs produces one DailyLog per projected day, each with a
// gap-free, midnight-to-midnight sequence of duty segments, per-status hour
// totals and proportionally attributed miles.
func buildDailyLogs(days []*dayEvents) ([]*plans.DailyLog, error) {
	results := make([]*plans.DailyLog, 0, len(days))
	for i, day := range days {
		dailyLog, err := buildDailyLog(day, i+1)
		if err != nil {
			return nil, err
		}
		results = append(results, dailyLog)
	}
	return results, nil
}

func buildDailyLog(day *dayEvents, dayNumber int) (*plans.DailyLog, error) {
	dayEnd := day.date.AddDate(0, 0, 1)
	events := collectEvents(day)

	var segments []*plans.DutySegment
	appendSegment := func(status plans.DutyStatus, start, end time.Time,
		location string, lat, lng *float64, remarks string) {
		segments = append(segments, &plans.DutySegment{
			Sequence:        len(segments),
			Status:          status,
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: int(math.Round(end.Sub(start).Minutes())),
			Location:        location,
			Lat:             lat,
			Lng:             lng,
			Remarks:         remarks,
		})
	}

	// off-duty filler segments carry the last known location forward; before
	// the first event the day opens wherever that event begins
	carryLocation := "N/A"
	if len(events) > 0 {
		carryLocation = events[0].location
	}

	cursor := day.date
	for _, event := range events {
		if event.start.Before(cursor) {
			return nil, &TimelineError{DayNumber: dayNumber,
				Detail: fmt.Sprintf("event starting %s overlaps segment ending %s",
					event.start.Format(time.RFC3339), cursor.Format(time.RFC3339))}
		}
		if event.start.After(cursor) {
			appendSegment(plans.DutyStatusOffDuty, cursor, event.start, carryLocation, nil, nil, "")
		}
		appendSegment(event.status, event.start, event.end, event.location, event.lat, event.lng, event.remarks)
		cursor = event.end
		carryLocation = event.location
	}
	if cursor.Before(dayEnd) {
		appendSegment(plans.DutyStatusOffDuty, cursor, dayEnd, carryLocation, nil, nil, "")
	}

	if err := validateSegments(segments, day.date, dayEnd, dayNumber); err != nil {
		return nil, err
	}

	dailyLog := plans.DailyLog{
		DayNumber: dayNumber,
		LogDate:   day.date,
		Segments:  segments,
	}
	fillTotals(&dailyLog, day)
	return &dailyLog, nil
}

// collectEvents merges a day's stop and drive slices into one stream sorted
// by start instant. At identical starts a stop precedes a drive: a stop's
// departure strictly precedes the drive leaving it.
func collectEvents(day *dayEvents) []timelineEvent {
	events := make([]timelineEvent, 0, len(day.stopSlices)+len(day.driveSlices))

	for _, slice := range day.stopSlices {
		lat, lng := slice.stop.Lat, slice.stop.Lng
		events = append(events, timelineEvent{
			start:    slice.dayArrival,
			end:      slice.dayDeparture,
			isStop:   true,
			status:   plans.StatusForStopType(slice.stop.StopType),
			location: slice.stop.Address,
			lat:      &lat,
			lng:      &lng,
			remarks:  slice.stop.Description,
		})
	}
	for _, slice := range day.driveSlices {
		events = append(events, timelineEvent{
			start:    slice.dayStart,
			end:      slice.dayEnd,
			status:   plans.DutyStatusDriving,
			location: "en route to " + slice.toStop.Address,
			remarks:  "driving from " + slice.fromStop.Address,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].start.Equal(events[j].start) {
			return events[i].isStop && !events[j].isStop
		}
		return events[i].start.Before(events[j].start)
	})
	return events
}

// validateSegments checks the timeline invariant: segments are strictly
// ordered, adjacent, and together partition [dayStart, dayEnd) exactly.
func validateSegments(segments []*plans.DutySegment, dayStart, dayEnd time.Time, dayNumber int) error {
	if len(segments) == 0 {
		return &TimelineError{DayNumber: dayNumber, Detail: "no segments produced"}
	}
	if !segments[0].StartTime.Equal(dayStart) {
		return &TimelineError{DayNumber: dayNumber, Detail: "first segment does not start at midnight"}
	}
	if !segments[len(segments)-1].EndTime.Equal(dayEnd) {
		return &TimelineError{DayNumber: dayNumber, Detail: "last segment does not end at midnight"}
	}
	for i, segment := range segments {
		if !segment.EndTime.After(segment.StartTime) {
			return &TimelineError{DayNumber: dayNumber,
				Detail: fmt.Sprintf("segment %d has non-positive duration", i)}
		}
		if i > 0 && !segment.StartTime.Equal(segments[i-1].EndTime) {
			return &TimelineError{DayNumber: dayNumber,
				Detail: fmt.Sprintf("segment %d is not adjacent to segment %d", i, i-1)}
		}
	}
	return nil
}

// fillTotals sums segment durations per duty status, attributes miles to the
// day proportionally for drives that cross midnight, and records the day's
// first and last stop addresses.
func fillTotals(dailyLog *plans.DailyLog, day *dayEvents) {
	hoursByStatus := make(map[plans.DutyStatus]float64)
	for _, segment := range dailyLog.Segments {
		hoursByStatus[segment.Status] += segment.EndTime.Sub(segment.StartTime).Hours()
	}
	dailyLog.TotalOffDutyHours = round2(hoursByStatus[plans.DutyStatusOffDuty])
	dailyLog.TotalSleeperHours = round2(hoursByStatus[plans.DutyStatusSleeper])
	dailyLog.TotalDrivingHours = round2(hoursByStatus[plans.DutyStatusDriving])
	dailyLog.TotalOnDutyHours = round2(hoursByStatus[plans.DutyStatusOnDutyNot])

	miles := 0.0
	for _, slice := range day.driveSlices {
		if slice.driveHours <= 0 {
			continue
		}
		sliceHours := slice.dayEnd.Sub(slice.dayStart).Hours()
		miles += (sliceHours / slice.driveHours) * slice.driveMiles
	}
	dailyLog.TotalMiles = round2(miles)

	dailyLog.StartLocation = "N/A"
	dailyLog.EndLocation = "N/A"
	if len(day.stopSlices) > 0 {
		dailyLog.StartLocation = day.stopSlices[0].stop.Address
		dailyLog.EndLocation = day.stopSlices[len(day.stopSlices)-1].stop.Address
	}
}
