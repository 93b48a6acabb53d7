// Package planapi exposes trip planning over HTTP: creating and planning a
// trip, listing trips, and retrieving a trip's stops and daily logs.
package planapi

import (
	"context"
	logger "log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/OpenRoadTools/haulcast/business/mapping"
	"github.com/OpenRoadTools/haulcast/business/planning"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

// Conf contains all configurable parameters in planapi.
type Conf struct {
	HTTPPort         int
	RecordToDatabase bool
	PublishOverNats  bool
	PlanSubject      string
}

// defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

// ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

// createServer creates a configured http.Server for responding to trip
// planning requests.
func createServer(log *logger.Logger,
	db *sqlx.DB,
	provider mapping.Provider,
	natsConnection *nats.Conn,
	conf Conf) *http.Server {

	planner := planning.MakePlanner(log, provider)
	publisher := makePlanResultsPublisher(log, db, natsConnection,
		conf.RecordToDatabase, conf.PublishOverNats, conf.PlanSubject)
	validate := validator.New()

	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.Handle("/api/trips", &createTripHandler{
		log:       log,
		provider:  provider,
		planner:   planner,
		publisher: publisher,
		validate:  validate,
	}).Methods(http.MethodPost)
	r.Handle("/api/trips", &listTripsHandler{log: log, db: db}).Methods(http.MethodGet)
	r.Handle("/api/trips/{tripId}", &getTripHandler{log: log, db: db}).Methods(http.MethodGet)
	r.Handle("/api/trips/{tripId}/logs", &tripLogsHandler{log: log, db: db}).Methods(http.MethodGet)

	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(conf.HTTPPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}
	return srv
}

// RunWebService starts the planning web service and terminates on a shutdown
// signal.
func RunWebService(log *logger.Logger,
	db *sqlx.DB,
	provider mapping.Provider,
	natsConnection *nats.Conn,
	conf Conf,
	shutdownSignal chan os.Signal) {

	srv := createServer(log, db, provider, natsConnection, conf)
	log.Printf("Starting server on port %d", conf.HTTPPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
