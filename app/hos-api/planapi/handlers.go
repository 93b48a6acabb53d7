package planapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	logger "log"
	"net/http"
	"time"

	"github.com/OpenRoadTools/haulcast/business/data/plans"
	"github.com/OpenRoadTools/haulcast/business/mapping"
	"github.com/OpenRoadTools/haulcast/business/planning"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

// tripRequest is the create-trip payload. Coordinates are optional; addresses
// are geocoded when they are absent.
type tripRequest struct {
	Name           string    `json:"trip_name"`
	CurrentAddress string    `json:"current_location_address"`
	CurrentLat     *float64  `json:"current_location_lat" validate:"omitempty,gte=-90,lte=90"`
	CurrentLng     *float64  `json:"current_location_lng" validate:"omitempty,gte=-180,lte=180"`
	PickupAddress  string    `json:"pickup_location_address"`
	PickupLat      *float64  `json:"pickup_location_lat" validate:"omitempty,gte=-90,lte=90"`
	PickupLng      *float64  `json:"pickup_location_lng" validate:"omitempty,gte=-180,lte=180"`
	DropoffAddress string    `json:"dropoff_location_address"`
	DropoffLat     *float64  `json:"dropoff_location_lat" validate:"omitempty,gte=-90,lte=90"`
	DropoffLng     *float64  `json:"dropoff_location_lng" validate:"omitempty,gte=-180,lte=180"`
	CycleHoursUsed float64   `json:"current_cycle_hours_used" validate:"gte=0,lte=70"`
	PlannedStart   time.Time `json:"planned_start_time" validate:"required"`
}

// tripResponse wraps a planned trip for the create and detail endpoints.
type tripResponse struct {
	Trip *plans.Trip          `json:"trip"`
	Plan *planning.PlanResult `json:"plan"`
}

type errorResponse struct {
	Error          string   `json:"error"`
	NeededHours    *float64 `json:"needed_hours,omitempty"`
	AvailableHours *float64 `json:"available_hours,omitempty"`
}

func respondJSON(log *logger.Logger, w http.ResponseWriter, status int, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling response to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(jsonData); err != nil {
		log.Printf("Error writing json response: %s", err)
	}
}

func respondError(log *logger.Logger, w http.ResponseWriter, status int, message string) {
	respondJSON(log, w, status, errorResponse{Error: message})
}

// createTripHandler plans a trip from user inputs and hands the result to the
// publisher for storage and notification.
type createTripHandler struct {
	log       *logger.Logger
	provider  mapping.Provider
	planner   *planning.Planner
	publisher *planResultsPublisher
	validate  *validator.Validate
}

// ServeHTTP implements createTripHandler's http.Handler interface
func (h *createTripHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var request tripRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondError(h.log, w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}
	if err := h.validate.Struct(request); err != nil {
		respondError(h.log, w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if request.PlannedStart.Before(time.Now()) {
		respondError(h.log, w, http.StatusBadRequest, "planned start time cannot be in the past")
		return
	}

	current, err := h.resolveLocation(r, request.CurrentAddress, request.CurrentLat, request.CurrentLng)
	if err != nil {
		h.respondLocationError(w, "current location", err)
		return
	}
	pickup, err := h.resolveLocation(r, request.PickupAddress, request.PickupLat, request.PickupLng)
	if err != nil {
		h.respondLocationError(w, "pickup location", err)
		return
	}
	dropoff, err := h.resolveLocation(r, request.DropoffAddress, request.DropoffLat, request.DropoffLng)
	if err != nil {
		h.respondLocationError(w, "dropoff location", err)
		return
	}

	input := planning.TripInput{
		Name:           request.Name,
		Current:        current,
		Pickup:         pickup,
		Dropoff:        dropoff,
		CycleHoursUsed: request.CycleHoursUsed,
		PlannedStart:   request.PlannedStart,
	}
	result, err := h.planner.Plan(r.Context(), input)
	if err != nil {
		h.respondPlanError(w, err)
		return
	}

	trip := plans.Trip{
		Id:             uuid.NewString(),
		Name:           request.Name,
		CurrentAddress: current.Address,
		CurrentLat:     current.Lat,
		CurrentLng:     current.Lng,
		PickupAddress:  pickup.Address,
		PickupLat:      pickup.Lat,
		PickupLng:      pickup.Lng,
		DropoffAddress: dropoff.Address,
		DropoffLat:     dropoff.Lat,
		DropoffLng:     dropoff.Lng,
		CycleHoursUsed: request.CycleHoursUsed,
		PlannedStart:   request.PlannedStart,
		DaysRequired:   result.DaysRequired,
		CreatedAt:      time.Now().UTC(),
	}
	if err = h.publisher.publish(&trip, result); err != nil {
		h.log.Printf("Error storing plan for trip %s, error:%v", trip.Id, err)
		respondError(h.log, w, http.StatusInternalServerError, "failed to store plan")
		return
	}

	respondJSON(h.log, w, http.StatusCreated, tripResponse{Trip: &trip, Plan: result})
}

// resolveLocation builds a Location from coordinates when both were supplied,
// geocoding the address otherwise.
func (h *createTripHandler) resolveLocation(r *http.Request, address string,
	lat *float64, lng *float64) (mapping.Location, error) {

	if lat != nil && lng != nil {
		return mapping.Location{Address: address, Lat: *lat, Lng: *lng}, nil
	}
	if address == "" {
		return mapping.Location{}, &planning.InvalidInputError{
			Field: "location", Reason: "requires an address or coordinates"}
	}
	return h.provider.Geocode(r.Context(), address)
}

func (h *createTripHandler) respondLocationError(w http.ResponseWriter, field string, err error) {
	var invalidInput *planning.InvalidInputError
	switch {
	case errors.Is(err, mapping.ErrNotFound):
		respondError(h.log, w, http.StatusBadRequest, fmt.Sprintf("could not geocode %s", field))
	case errors.As(err, &invalidInput):
		respondError(h.log, w, http.StatusBadRequest, fmt.Sprintf("%s %s", field, invalidInput.Reason))
	default:
		h.log.Printf("Error resolving %s, error:%v", field, err)
		respondError(h.log, w, http.StatusBadGateway, "map provider unavailable")
	}
}

func (h *createTripHandler) respondPlanError(w http.ResponseWriter, err error) {
	var invalidInput *planning.InvalidInputError
	var infeasible *planning.InfeasibleCycleError
	var mapErr *mapping.Error

	switch {
	case errors.As(err, &invalidInput):
		respondError(h.log, w, http.StatusBadRequest, invalidInput.Error())
	case errors.As(err, &infeasible):
		respondJSON(h.log, w, http.StatusUnprocessableEntity, errorResponse{
			Error:          infeasible.Error(),
			NeededHours:    &infeasible.NeededHours,
			AvailableHours: &infeasible.AvailableHours,
		})
	case errors.As(err, &mapErr):
		h.log.Printf("Map provider error during planning, error:%v", err)
		respondError(h.log, w, http.StatusBadGateway, "map provider unavailable")
	default:
		h.log.Printf("Error planning trip, error:%v", err)
		respondError(h.log, w, http.StatusInternalServerError, "failed to plan trip")
	}
}

// listTripsHandler serves trip summaries, most recent first.
type listTripsHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

// ServeHTTP implements listTripsHandler's http.Handler interface
func (h *listTripsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	trips, err := plans.GetAllTrips(h.db)
	if err != nil {
		h.log.Printf("Error loading trips, error:%v", err)
		respondError(h.log, w, http.StatusInternalServerError, "failed to load trips")
		return
	}
	respondJSON(h.log, w, http.StatusOK, map[string]interface{}{"trips": trips})
}

// getTripHandler serves one trip with its full plan.
type getTripHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

// ServeHTTP implements getTripHandler's http.Handler interface
func (h *getTripHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tripId := mux.Vars(r)["tripId"]
	trip, err := plans.GetTrip(h.db, tripId)
	if err != nil {
		h.respondLoadError(w, tripId, err)
		return
	}
	routePlan, err := plans.GetRoutePlanForTrip(h.db, tripId)
	if err != nil {
		h.respondLoadError(w, tripId, err)
		return
	}
	stops, err := plans.GetStopsForRoutePlan(h.db, routePlan.Id)
	if err != nil {
		h.respondLoadError(w, tripId, err)
		return
	}
	dailyLogs, err := plans.GetDailyLogsForRoutePlan(h.db, routePlan.Id)
	if err != nil {
		h.respondLoadError(w, tripId, err)
		return
	}

	respondJSON(h.log, w, http.StatusOK, tripResponse{
		Trip: trip,
		Plan: &planning.PlanResult{
			Route:        routePlan,
			Stops:        stops,
			DailyLogs:    dailyLogs,
			DaysRequired: trip.DaysRequired,
		},
	})
}

func (h *getTripHandler) respondLoadError(w http.ResponseWriter, tripId string, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		respondError(h.log, w, http.StatusNotFound, fmt.Sprintf("trip %s not found", tripId))
		return
	}
	h.log.Printf("Error loading trip %s, error:%v", tripId, err)
	respondError(h.log, w, http.StatusInternalServerError, "failed to load trip")
}

// tripLogsHandler serves a trip's daily logs with their duty segments.
type tripLogsHandler struct {
	log *logger.Logger
	db  *sqlx.DB
}

// ServeHTTP implements tripLogsHandler's http.Handler interface
func (h *tripLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tripId := mux.Vars(r)["tripId"]
	routePlan, err := plans.GetRoutePlanForTrip(h.db, tripId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(h.log, w, http.StatusNotFound, fmt.Sprintf("no plan found for trip %s", tripId))
			return
		}
		h.log.Printf("Error loading plan for trip %s, error:%v", tripId, err)
		respondError(h.log, w, http.StatusInternalServerError, "failed to load daily logs")
		return
	}
	dailyLogs, err := plans.GetDailyLogsForRoutePlan(h.db, routePlan.Id)
	if err != nil {
		h.log.Printf("Error loading daily logs for trip %s, error:%v", tripId, err)
		respondError(h.log, w, http.StatusInternalServerError, "failed to load daily logs")
		return
	}
	respondJSON(h.log, w, http.StatusOK, map[string]interface{}{"daily_logs": dailyLogs})
}
