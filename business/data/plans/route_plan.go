package plans

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Compliance status values carried on a RoutePlan.
const (
	ComplianceCompliant    = "compliant"
	ComplianceWarning      = "warning"
	ComplianceNonCompliant = "non_compliant"
)

// Geometry is a route polyline of [lng, lat] coordinate pairs, stored as a
// json column.
type Geometry [][]float64

// Value implements driver.Valuer, marshaling the polyline to json.
func (g Geometry) Value() (driver.Value, error) {
	return json.Marshal(g)
}

// Scan implements sql.Scanner for json columns read back from the database.
func (g *Geometry) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*g = nil
		return nil
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("cannot scan %T into Geometry", src)
	}
}

// RoutePlan is the generated plan summary for a trip, one per trip.
type RoutePlan struct {
	Id                  int64     `db:"id" json:"id"`
	TripId              string    `db:"trip_id" json:"trip_id"`
	TotalDistanceMiles  float64   `db:"total_distance_miles" json:"total_distance_miles"`
	TotalDurationHours  float64   `db:"total_duration_hours" json:"total_duration_hours"`
	TotalDrivingHours   float64   `db:"total_driving_hours" json:"total_driving_hours"`
	TotalOnDutyHours    float64   `db:"total_on_duty_hours" json:"total_on_duty_hours"`
	TotalOffDutyHours   float64   `db:"total_off_duty_hours" json:"total_off_duty_hours"`
	CycleHoursAfterTrip float64   `db:"cycle_hours_after_trip" json:"cycle_hours_after_trip"`
	ComplianceStatus    string    `db:"compliance_status" json:"compliance_status"`
	Geometry            Geometry  `db:"geometry" json:"geometry"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// RecordRoutePlan saves a new route plan and populates RoutePlan.Id.
func RecordRoutePlan(ptx *PlanTransaction, plan *RoutePlan) error {
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	statementString := "insert into route_plan ( " +
		"trip_id, " +
		"total_distance_miles, " +
		"total_duration_hours, " +
		"total_driving_hours, " +
		"total_on_duty_hours, " +
		"total_off_duty_hours, " +
		"cycle_hours_after_trip, " +
		"compliance_status, " +
		"geometry, " +
		"created_at) " +
		"values (" +
		":trip_id, " +
		":total_distance_miles, " +
		":total_duration_hours, " +
		":total_driving_hours, " +
		":total_on_duty_hours, " +
		":total_off_duty_hours, " +
		":cycle_hours_after_trip, " +
		":compliance_status, " +
		":geometry, " +
		":created_at)"
	statementString = ptx.Tx.Rebind(statementString)
	if _, err := ptx.Tx.NamedExec(statementString, plan); err != nil {
		return errors.Wrap(err, "recording route plan")
	}

	// retrieve assigned id, one plan per trip
	statementString = ptx.Tx.Rebind("select id from route_plan where trip_id = ?")
	err := ptx.Tx.Get(&plan.Id, statementString, plan.TripId)
	return errors.Wrap(err, "retrieving route plan id")
}

// GetRoutePlanForTrip retrieves the route plan belonging to tripId.
func GetRoutePlanForTrip(db *sqlx.DB, tripId string) (*RoutePlan, error) {
	plan := RoutePlan{}
	err := db.Get(&plan, db.Rebind("select * from route_plan where trip_id = ?"), tripId)
	if err != nil {
		return nil, errors.Wrapf(err, "loading route plan for trip %s", tripId)
	}
	return &plan, nil
}
