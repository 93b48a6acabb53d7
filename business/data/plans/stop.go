package plans

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// StopType identifies what happens at a stop on the route.
type StopType string

const (
	StopTypeCurrent    StopType = "current"
	StopTypePickup     StopType = "pickup"
	StopTypeDropoff    StopType = "dropoff"
	StopTypeFuel       StopType = "fuel"
	StopTypeBreak30Min StopType = "30min_break"
	StopTypeBreak10Hr  StopType = "10hr_break"
)

// Stop is one stop on a planned route: trip waypoints plus the fuel and rest
// stops the planner inserts. Sequence is dense and 0-based within a plan.
type Stop struct {
	Id                int64     `db:"id" json:"id"`
	RoutePlanId       int64     `db:"route_plan_id" json:"route_plan_id"`
	Sequence          int       `db:"sequence" json:"sequence"`
	StopType          StopType  `db:"stop_type" json:"stop_type"`
	Address           string    `db:"address" json:"location_address"`
	Lat               float64   `db:"lat" json:"location_lat"`
	Lng               float64   `db:"lng" json:"location_lng"`
	ArrivalTime       time.Time `db:"arrival_time" json:"arrival_time"`
	DepartureTime     time.Time `db:"departure_time" json:"departure_time"`
	DurationMinutes   int       `db:"duration_minutes" json:"duration_minutes"`
	Description       string    `db:"description" json:"description"`
	MilesFromPrevious float64   `db:"miles_from_previous" json:"miles_from_previous"`
	CumulativeMiles   float64   `db:"cumulative_miles" json:"cumulative_miles"`
}

// RecordStops saves a plan's stops to the database in a batch.
func RecordStops(ptx *PlanTransaction, stops []*Stop) error {
	if len(stops) == 0 {
		return nil
	}
	statementString := "insert into stop ( " +
		"route_plan_id, " +
		"sequence, " +
		"stop_type, " +
		"address, " +
		"lat, " +
		"lng, " +
		"arrival_time, " +
		"departure_time, " +
		"duration_minutes, " +
		"description, " +
		"miles_from_previous, " +
		"cumulative_miles) " +
		"values (" +
		":route_plan_id, " +
		":sequence, " +
		":stop_type, " +
		":address, " +
		":lat, " +
		":lng, " +
		":arrival_time, " +
		":departure_time, " +
		":duration_minutes, " +
		":description, " +
		":miles_from_previous, " +
		":cumulative_miles)"
	statementString = ptx.Tx.Rebind(statementString)
	_, err := ptx.Tx.NamedExec(statementString, stops)
	return errors.Wrap(err, "recording stops")
}

// GetStopsForRoutePlan retrieves a plan's stops in sequence order.
func GetStopsForRoutePlan(db *sqlx.DB, routePlanId int64) ([]*Stop, error) {
	var results []*Stop
	statementString := db.Rebind("select * from stop where route_plan_id = ? order by sequence")
	err := db.Select(&results, statementString, routePlanId)
	return results, errors.Wrapf(err, "loading stops for route plan %d", routePlanId)
}
