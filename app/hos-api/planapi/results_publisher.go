package planapi

import (
	"encoding/json"
	logger "log"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
	"github.com/OpenRoadTools/haulcast/business/planning"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// planResultsPublisher takes finished trip plans and sends them to their
// destinations (such as database and nats)
type planResultsPublisher struct {
	log              *logger.Logger
	db               *sqlx.DB
	natsConnection   *nats.Conn
	recordToDatabase bool
	publishOverNats  bool
	subject          string
}

// makePlanResultsPublisher creates planResultsPublisher
func makePlanResultsPublisher(log *logger.Logger,
	db *sqlx.DB,
	natsConnection *nats.Conn,
	recordToDatabase bool,
	publishOverNats bool,
	subject string) *planResultsPublisher {
	return &planResultsPublisher{
		log:              log,
		db:               db,
		natsConnection:   natsConnection,
		recordToDatabase: recordToDatabase,
		publishOverNats:  publishOverNats,
		subject:          subject,
	}
}

// planSummary is the NATS payload announcing a newly planned trip.
type planSummary struct {
	TripId             string   `json:"trip_id"`
	TripName           string   `json:"trip_name"`
	TotalDistanceMiles float64  `json:"total_distance_miles"`
	TotalDurationHours float64  `json:"total_duration_hours"`
	DaysRequired       int      `json:"days_required"`
	ComplianceStatus   string   `json:"compliance_status"`
	FuelStops          int      `json:"fuel_stops"`
	Break30MinStops    int      `json:"break_30min_stops"`
	Break10HrStops     int      `json:"break_10hr_stops"`
	Advisories         []string `json:"advisories,omitempty"`
}

// publish records the plan aggregate to the database and announces a summary
// over NATS according to recordToDatabase and publishOverNats. A database
// failure is returned to the caller; a NATS failure is only logged.
func (p *planResultsPublisher) publish(trip *plans.Trip, result *planning.PlanResult) error {
	if p.recordToDatabase {
		err := plans.SavePlan(p.db, trip, result.Route, result.Stops, result.DailyLogs)
		if err != nil {
			return errors.Wrapf(err, "recording plan for trip %s", trip.Id)
		}
	}
	if p.publishOverNats {
		p.sendOverNats(trip, result)
	}
	return nil
}

func (p *planResultsPublisher) sendOverNats(trip *plans.Trip, result *planning.PlanResult) {
	summary := planSummary{
		TripId:             trip.Id,
		TripName:           trip.Name,
		TotalDistanceMiles: result.Route.TotalDistanceMiles,
		TotalDurationHours: result.Route.TotalDurationHours,
		DaysRequired:       result.DaysRequired,
		ComplianceStatus:   result.Route.ComplianceStatus,
		Advisories:         result.Advisories,
	}
	for _, stop := range result.Stops {
		switch stop.StopType {
		case plans.StopTypeFuel:
			summary.FuelStops++
		case plans.StopTypeBreak30Min:
			summary.Break30MinStops++
		case plans.StopTypeBreak10Hr:
			summary.Break10HrStops++
		}
	}

	jsonData, err := json.Marshal(summary)
	if err != nil {
		p.log.Printf("failed to marshal plan summary in "+
			"planResultsPublisher.sendOverNats, error:%v", err)
		return
	}
	if err = p.natsConnection.Publish(p.subject, jsonData); err != nil {
		p.log.Printf("failed to send plan summary in "+
			"planResultsPublisher.sendOverNats, error:%v", err)
	}
}
