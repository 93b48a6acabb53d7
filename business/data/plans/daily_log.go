package plans

import (
	"time"

	"github.com/OpenRoadTools/haulcast/foundation/database"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// DutyStatus is one of the four ELD duty statuses drawn on a daily log grid.
type DutyStatus string

const (
	DutyStatusOffDuty   DutyStatus = "off_duty"
	DutyStatusSleeper   DutyStatus = "sleeper_berth"
	DutyStatusDriving   DutyStatus = "driving"
	DutyStatusOnDutyNot DutyStatus = "on_duty_not_driving"
)

// StatusForStopType maps a stop to the duty status recorded while the driver
// is at it. Loading, delivery and fueling are on-duty work; a 30-minute break
// is off-duty; the 10-hour rest is spent in the sleeper berth.
func StatusForStopType(stopType StopType) DutyStatus {
	switch stopType {
	case StopTypePickup, StopTypeDropoff, StopTypeFuel:
		return DutyStatusOnDutyNot
	case StopTypeBreak10Hr:
		return DutyStatusSleeper
	default:
		return DutyStatusOffDuty
	}
}

// DailyLog is one 24-hour log sheet, local midnight to local midnight.
// Keyed (route_plan_id, day_number) with day numbers starting at 1.
type DailyLog struct {
	Id                int64     `db:"id" json:"id"`
	RoutePlanId       int64     `db:"route_plan_id" json:"route_plan_id"`
	DayNumber         int       `db:"day_number" json:"day_number"`
	LogDate           time.Time `db:"log_date" json:"log_date"`
	StartLocation     string    `db:"start_location" json:"start_location"`
	EndLocation       string    `db:"end_location" json:"end_location"`
	TotalOffDutyHours float64   `db:"total_off_duty_hours" json:"total_off_duty_hours"`
	TotalSleeperHours float64   `db:"total_sleeper_hours" json:"total_sleeper_berth_hours"`
	TotalDrivingHours float64   `db:"total_driving_hours" json:"total_driving_hours"`
	TotalOnDutyHours  float64   `db:"total_on_duty_hours" json:"total_on_duty_not_driving_hours"`
	TotalMiles        float64   `db:"total_miles" json:"total_miles"`

	Segments []*DutySegment `db:"-" json:"duty_segments"`
}

// DutySegment is one contiguous span of a single duty status within a daily
// log. Segments are dense, 0-based, adjacent, and partition the 24-hour day.
type DutySegment struct {
	Id              int64      `db:"id" json:"id"`
	DailyLogId      int64      `db:"daily_log_id" json:"daily_log_id"`
	Sequence        int        `db:"sequence" json:"sequence"`
	Status          DutyStatus `db:"status" json:"status"`
	StartTime       time.Time  `db:"start_time" json:"start_time"`
	EndTime         time.Time  `db:"end_time" json:"end_time"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Location        string     `db:"location" json:"location"`
	Lat             *float64   `db:"lat" json:"location_lat"`
	Lng             *float64   `db:"lng" json:"location_lng"`
	Remarks         string     `db:"remarks" json:"remarks"`
}

// RecordDailyLogs saves daily logs and their duty segments.
func RecordDailyLogs(ptx *PlanTransaction, dailyLogs []*DailyLog) error {
	for _, dailyLog := range dailyLogs {
		if err := recordDailyLog(ptx, dailyLog); err != nil {
			return err
		}
	}
	return nil
}

func recordDailyLog(ptx *PlanTransaction, dailyLog *DailyLog) error {
	statementString := "insert into daily_log ( " +
		"route_plan_id, " +
		"day_number, " +
		"log_date, " +
		"start_location, " +
		"end_location, " +
		"total_off_duty_hours, " +
		"total_sleeper_hours, " +
		"total_driving_hours, " +
		"total_on_duty_hours, " +
		"total_miles) " +
		"values (" +
		":route_plan_id, " +
		":day_number, " +
		":log_date, " +
		":start_location, " +
		":end_location, " +
		":total_off_duty_hours, " +
		":total_sleeper_hours, " +
		":total_driving_hours, " +
		":total_on_duty_hours, " +
		":total_miles)"
	statementString = ptx.Tx.Rebind(statementString)
	if _, err := ptx.Tx.NamedExec(statementString, dailyLog); err != nil {
		return errors.Wrapf(err, "recording daily log day %d", dailyLog.DayNumber)
	}

	// retrieve assigned id, (route_plan_id, day_number) is unique
	statementString = ptx.Tx.Rebind("select id from daily_log where route_plan_id = ? and day_number = ?")
	if err := ptx.Tx.Get(&dailyLog.Id, statementString, dailyLog.RoutePlanId, dailyLog.DayNumber); err != nil {
		return errors.Wrapf(err, "retrieving daily log id for day %d", dailyLog.DayNumber)
	}

	if len(dailyLog.Segments) == 0 {
		return nil
	}
	for _, segment := range dailyLog.Segments {
		segment.DailyLogId = dailyLog.Id
	}
	statementString = "insert into duty_segment ( " +
		"daily_log_id, " +
		"sequence, " +
		"status, " +
		"start_time, " +
		"end_time, " +
		"duration_minutes, " +
		"location, " +
		"lat, " +
		"lng, " +
		"remarks) " +
		"values (" +
		":daily_log_id, " +
		":sequence, " +
		":status, " +
		":start_time, " +
		":end_time, " +
		":duration_minutes, " +
		":location, " +
		":lat, " +
		":lng, " +
		":remarks)"
	statementString = ptx.Tx.Rebind(statementString)
	_, err := ptx.Tx.NamedExec(statementString, dailyLog.Segments)
	return errors.Wrapf(err, "recording duty segments for day %d", dailyLog.DayNumber)
}

// GetDailyLogsForRoutePlan retrieves a plan's daily logs in day order with
// their duty segments populated.
func GetDailyLogsForRoutePlan(db *sqlx.DB, routePlanId int64) ([]*DailyLog, error) {
	var dailyLogs []*DailyLog
	statementString := db.Rebind("select * from daily_log where route_plan_id = ? order by day_number")
	if err := db.Select(&dailyLogs, statementString, routePlanId); err != nil {
		return nil, errors.Wrapf(err, "loading daily logs for route plan %d", routePlanId)
	}
	if len(dailyLogs) == 0 {
		return dailyLogs, nil
	}

	logIds := make([]int64, 0, len(dailyLogs))
	logsById := make(map[int64]*DailyLog)
	for _, dailyLog := range dailyLogs {
		logIds = append(logIds, dailyLog.Id)
		logsById[dailyLog.Id] = dailyLog
	}

	rows, err := database.NamedQueryRowsFromMap(
		"select * from duty_segment where daily_log_id in (:log_ids) order by daily_log_id, sequence",
		db, map[string]interface{}{
			"log_ids": logIds,
		})
	if err != nil {
		return nil, errors.Wrapf(err, "loading duty segments for route plan %d", routePlanId)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		segment := DutySegment{}
		if err = rows.StructScan(&segment); err != nil {
			return nil, errors.Wrap(err, "scanning duty segment")
		}
		if dailyLog, present := logsById[segment.DailyLogId]; present {
			dailyLog.Segments = append(dailyLog.Segments, &segment)
		}
	}
	return dailyLogs, nil
}
