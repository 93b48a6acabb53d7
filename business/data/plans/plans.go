// Package plans provides CRUD functionality for the planned-trip aggregate:
// a Trip, its RoutePlan, and the plan's Stops, DailyLogs and DutySegments.
// The aggregate is always written in a single transaction; re-planning a trip
// replaces all prior plan rows atomically.
package plans

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PlanTransaction contains required data for recording plan records owned by
// one trip inside a single transaction.
type PlanTransaction struct {
	Tx *sqlx.Tx
}

// Trip is a planning request as accepted at the API boundary, plus the summary
// fields populated once a plan has been generated.
type Trip struct {
	Id             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	CurrentAddress string    `db:"current_address" json:"current_location_address"`
	CurrentLat     float64   `db:"current_lat" json:"current_location_lat"`
	CurrentLng     float64   `db:"current_lng" json:"current_location_lng"`
	PickupAddress  string    `db:"pickup_address" json:"pickup_location_address"`
	PickupLat      float64   `db:"pickup_lat" json:"pickup_location_lat"`
	PickupLng      float64   `db:"pickup_lng" json:"pickup_location_lng"`
	DropoffAddress string    `db:"dropoff_address" json:"dropoff_location_address"`
	DropoffLat     float64   `db:"dropoff_lat" json:"dropoff_location_lat"`
	DropoffLng     float64   `db:"dropoff_lng" json:"dropoff_location_lng"`
	CycleHoursUsed float64   `db:"cycle_hours_used" json:"current_cycle_hours_used"`
	PlannedStart   time.Time `db:"planned_start" json:"planned_start_time"`
	DaysRequired   int       `db:"days_required" json:"days_required"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// SaveTrip inserts a new trip or updates an existing one. Existing records are
// determined by a previously saved Trip.Id.
func SaveTrip(ptx *PlanTransaction, trip *Trip) error {
	statementString := "insert into trip ( " +
		"id, " +
		"name, " +
		"current_address, " +
		"current_lat, " +
		"current_lng, " +
		"pickup_address, " +
		"pickup_lat, " +
		"pickup_lng, " +
		"dropoff_address, " +
		"dropoff_lat, " +
		"dropoff_lng, " +
		"cycle_hours_used, " +
		"planned_start, " +
		"days_required, " +
		"created_at) " +
		"values (" +
		":id, " +
		":name, " +
		":current_address, " +
		":current_lat, " +
		":current_lng, " +
		":pickup_address, " +
		":pickup_lat, " +
		":pickup_lng, " +
		":dropoff_address, " +
		":dropoff_lat, " +
		":dropoff_lng, " +
		":cycle_hours_used, " +
		":planned_start, " +
		":days_required, " +
		":created_at) " +
		"on conflict (id) do update set " +
		"name = :name, " +
		"days_required = :days_required"
	statementString = ptx.Tx.Rebind(statementString)
	_, err := ptx.Tx.NamedExec(statementString, trip)
	return errors.Wrap(err, "saving trip")
}

// GetTrip retrieves the Trip with tripId.
func GetTrip(db *sqlx.DB, tripId string) (*Trip, error) {
	trip := Trip{}
	err := db.Get(&trip, db.Rebind("select * from trip where id = ?"), tripId)
	if err != nil {
		return nil, errors.Wrapf(err, "loading trip %s", tripId)
	}
	return &trip, nil
}

// GetAllTrips retrieves every trip, most recently created first.
func GetAllTrips(db *sqlx.DB) ([]*Trip, error) {
	var results []*Trip
	err := db.Select(&results, "select * from trip order by created_at desc")
	return results, errors.Wrap(err, "loading trips")
}

// SavePlan stores the complete plan aggregate for a trip in one transaction:
// the trip, its route plan, all stops, and every daily log with its duty
// segments. Any previous plan for the trip is removed in the same transaction.
func SavePlan(db *sqlx.DB, trip *Trip, plan *RoutePlan, stops []*Stop, dailyLogs []*DailyLog) error {
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning plan transaction")
	}
	ptx := PlanTransaction{Tx: tx}

	err = savePlanInTransaction(&ptx, trip, plan, stops, dailyLogs)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrapf(err, "rolling back after save failure: %v", rollbackErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing plan transaction")
}

func savePlanInTransaction(ptx *PlanTransaction, trip *Trip, plan *RoutePlan,
	stops []*Stop, dailyLogs []*DailyLog) error {

	if err := SaveTrip(ptx, trip); err != nil {
		return err
	}
	if err := DeletePlanForTrip(ptx, trip.Id); err != nil {
		return err
	}

	plan.TripId = trip.Id
	if err := RecordRoutePlan(ptx, plan); err != nil {
		return err
	}

	for _, stop := range stops {
		stop.RoutePlanId = plan.Id
	}
	if err := RecordStops(ptx, stops); err != nil {
		return err
	}

	for _, dailyLog := range dailyLogs {
		dailyLog.RoutePlanId = plan.Id
	}
	return RecordDailyLogs(ptx, dailyLogs)
}

// DeletePlanForTrip removes the route plan and every child row belonging to a
// trip. Used when a trip is re-planned.
func DeletePlanForTrip(ptx *PlanTransaction, tripId string) error {
	statements := []string{
		"delete from duty_segment where daily_log_id in " +
			"(select daily_log.id from daily_log " +
			"join route_plan on route_plan.id = daily_log.route_plan_id " +
			"where route_plan.trip_id = ?)",
		"delete from daily_log where route_plan_id in " +
			"(select id from route_plan where trip_id = ?)",
		"delete from stop where route_plan_id in " +
			"(select id from route_plan where trip_id = ?)",
		"delete from route_plan where trip_id = ?",
	}
	for _, statementString := range statements {
		if _, err := ptx.Tx.Exec(ptx.Tx.Rebind(statementString), tripId); err != nil {
			return errors.Wrapf(err, "deleting prior plan for trip %s", tripId)
		}
	}
	return nil
}
