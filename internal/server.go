package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/plusone-app/plusone/internal/config"
	"github.com/plusone-app/plusone/internal/dailylog"
	"github.com/plusone-app/plusone/internal/health"
	"github.com/plusone-app/plusone/internal/middleware"
	"github.com/plusone-app/plusone/internal/notifications"
	"github.com/plusone-app/plusone/internal/objectives"
	"github.com/plusone-app/plusone/internal/profile"
	"github.com/plusone-app/plusone/internal/store"
	"github.com/plusone-app/plusone/internal/telemetry/metrics"
	"github.com/plusone-app/plusone/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	redisClient *redis.Client
	kvStore     store.KVStore
	rateLimiter middleware.RequestRateLimiter

	activeObjectives  *objectives.Store[*objectives.ActiveObjective]
	passiveObjectives *objectives.Store[*objectives.PassiveObjective]
	activeLog         *dailylog.Engine[*objectives.ActiveObjective, dailylog.ActiveEntry]
	passiveLog        *dailylog.Engine[*objectives.PassiveObjective, dailylog.PassiveEntry]
	profiles          *profile.Store
	reminders         *notifications.Reminders

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config         *config.Config
	RedisPassword  string
	VersionInfo    string
	TracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	otelShutdown, err := tracing.Setup(params.TracingEnabled, "plusone-backend")
	if err != nil {
		return nil, err
	}

	kvStore := store.NewRedisStore(rdb)
	activeObjectives := objectives.NewActiveStore(kvStore, metricsManager)
	passiveObjectives := objectives.NewPassiveStore(kvStore, metricsManager)
	activeLog := dailylog.NewActiveEngine(kvStore, activeObjectives, metricsManager)
	passiveLog := dailylog.NewPassiveEngine(kvStore, passiveObjectives, metricsManager)
	profiles := profile.NewStore(kvStore)

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,

		redisClient: rdb,
		kvStore:     kvStore,
		rateLimiter: redis_rate.NewLimiter(rdb),

		activeObjectives:  activeObjectives,
		passiveObjectives: passiveObjectives,
		activeLog:         activeLog,
		passiveLog:        passiveLog,
		profiles:          profiles,
		reminders: notifications.NewReminders(
			notifications.NewLogScheduler(),
			profiles,
			params.Config.ReminderTime,
			activeLog,
			passiveLog,
		),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	rateLimited := middleware.RateLimit(
		s.rateLimiter,
		"objectives",
		s.config.ObjectivesRateLimitAllowedPerMin,
		s.metricsManager,
	)

	dailyLogHandler := dailylog.NewHandler(s.activeLog, s.passiveLog, s.profiles)
	r.HandleFunc("/objectives/{category}/pending", dailyLogHandler.HandlePending).Methods("GET", "OPTIONS").Name("pending-objectives")

	activeHandler := objectives.NewActiveHandler(s.activeObjectives)
	r.HandleFunc("/objectives/active", activeHandler.HandleList).Methods("GET", "OPTIONS").Name("list-active")
	r.Handle("/objectives/active", rateLimited(http.HandlerFunc(activeHandler.HandleCreate))).Methods("POST", "OPTIONS").Name("new-active")
	r.HandleFunc("/objectives/active/{id}", activeHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-active")
	r.Handle("/objectives/active/{id}", rateLimited(http.HandlerFunc(activeHandler.HandleEdit))).Methods("PUT", "OPTIONS").Name("edit-active")
	r.HandleFunc("/objectives/active/{id}", activeHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-active")

	passiveHandler := objectives.NewPassiveHandler(s.passiveObjectives)
	r.HandleFunc("/objectives/passive", passiveHandler.HandleList).Methods("GET", "OPTIONS").Name("list-passive")
	r.Handle("/objectives/passive", rateLimited(http.HandlerFunc(passiveHandler.HandleCreate))).Methods("POST", "OPTIONS").Name("new-passive")
	r.HandleFunc("/objectives/passive/{id}", passiveHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-passive")
	r.Handle("/objectives/passive/{id}", rateLimited(http.HandlerFunc(passiveHandler.HandleEdit))).Methods("PUT", "OPTIONS").Name("edit-passive")
	r.HandleFunc("/objectives/passive/{id}", passiveHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-passive")

	r.HandleFunc("/dailylog/{category}", dailyLogHandler.HandleGetLog).Methods("GET", "OPTIONS").Name("get-daily-log")
	r.HandleFunc("/dailylog/{category}/backfill", dailyLogHandler.HandleBackfill).Methods("POST", "OPTIONS").Name("backfill-daily-log")
	r.HandleFunc("/dailylog/passive/{id}/streak", dailyLogHandler.HandleStreak).Methods("GET", "OPTIONS").Name("get-streak")
	r.HandleFunc("/dailylog/{category}/{id}", dailyLogHandler.HandleRecord).Methods("POST", "OPTIONS").Name("record-outcome")

	profileHandler := profile.NewHandler(s.profiles)
	r.HandleFunc("/profile", profileHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", profileHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-profile")

	healthHandler := health.NewHandler()
	r.HandleFunc("/health/bmi", healthHandler.HandleBMI).Methods("GET").Name("health-bmi")
	r.HandleFunc("/health/bodyfat", healthHandler.HandleBFP).Methods("GET").Name("health-bodyfat")
	r.HandleFunc("/health/usnavy", healthHandler.HandleUSNavyBFP).Methods("GET").Name("health-usnavy")
	r.HandleFunc("/health/met", healthHandler.HandleRunningMET).Methods("GET").Name("health-met")

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(s.versionInfo)); err != nil {
			log.Errorf("failed to write version response: %s", err)
		}
	}).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)

	go s.reconcileOnStartup(ctx)
}

// reconcileOnStartup catches the daily logs up with the calendar and lets
// the reminder decision run once, the same thing the mobile client does
// when it comes to foreground.
func (s *Server) reconcileOnStartup(ctx context.Context) {
	if written, err := s.activeLog.Backfill(ctx); err != nil {
		log.Errorf("startup backfill, active daily log: %s", err)
	} else if written > 0 {
		log.Infof("startup backfill, active daily log: %d entries", written)
	}

	if written, err := s.passiveLog.Backfill(ctx); err != nil {
		log.Errorf("startup backfill, passive daily log: %s", err)
	} else if written > 0 {
		log.Infof("startup backfill, passive daily log: %d entries", written)
	}

	if !s.config.RemindersEnabled {
		return
	}
	if err := s.reminders.Reconcile(ctx); err != nil {
		log.Errorf("startup reminders reconcile: %s", err)
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
