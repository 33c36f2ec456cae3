package server

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/KyleBrandon/vzero-dashboard/config"
	"github.com/KyleBrandon/vzero-dashboard/internal/database"
	"github.com/KyleBrandon/vzero-dashboard/internal/deviceapi"
	"github.com/KyleBrandon/vzero-dashboard/internal/journal"
	"github.com/KyleBrandon/vzero-dashboard/internal/middleware"
	"github.com/KyleBrandon/vzero-dashboard/internal/notices"
	"github.com/KyleBrandon/vzero-dashboard/internal/workflow"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/health"
	journalapi "github.com/KyleBrandon/vzero-dashboard/pkg/server/journal"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/monitor"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/notifications"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/plugins"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/sensors"
	"github.com/KyleBrandon/vzero-dashboard/pkg/server/status"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/twilio"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DEFAULT_SERVER_PORT          = "8080"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"
)

// Used by "flag" to read command line argument
var (
	cmdLineFlagLogLevel string
)

type ServerConfig struct {
	mux                *http.ServeMux
	mctx               *monitor.MonitorContext
	ServerPort         string
	DatabaseURL        string
	ApiKey             string
	LogFileLocation    string
	ConfigFileLocation string
	Logger             *slog.Logger
	LoggerLevel        *slog.LevelVar
	LogFile            *os.File
	Notifier           *notify.Notify

	Config       config.Config
	Device       *deviceapi.Client
	Middleware   *middleware.Client
	Notices      *notices.Registry
	Journal      journal.Store
	Workflow     *workflow.Workflow
	Queries      *database.Queries
	DBConnection *sql.DB
}

// init will read and initialize the global command line variables
func init() {
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the server at")
}

// InitializeServer loads the configuration, starts monitoring the device and registers the
// dashboard routes.
func InitializeServer() (*ServerConfig, error) {
	slog.Debug(">>InitializeServer")
	defer slog.Debug("<<InitializeServer")

	sc, err := initializeServerConfig()
	if err != nil {
		return nil, err
	}

	sc.mux = http.NewServeMux()

	sc.Device = deviceapi.NewClient(sc.Config.DeviceURL, sc.Config.RequestTimeout())
	sc.Middleware = middleware.NewClient(sc.Config.MiddlewareURL, sc.Config.ChannelTimeout())
	sc.Notices = notices.NewRegistry(sc.Config.NoticeTimeout())

	intervals := monitor.Intervals{
		Heartbeat: sc.Config.HeartbeatInterval(),
		Sensors:   sc.Config.SensorInterval(),
	}
	sc.mctx = monitor.InitializeMonitorContext(sc.Notifier, sc.Device, sc.Middleware, sc.Notices, intervals)

	sc.Workflow = workflow.New(sc.Device, sc.Middleware, sc.Notices, sc.mctx, sc.Journal)

	healthHandler := health.NewHandler(sc.LoggerLevel, sc.ApiKey)
	healthHandler.RegisterRoutes(sc.mux)

	sensorHandler := sensors.NewHandler(sc.mctx, sc.Workflow, sc.ApiKey)
	sensorHandler.RegisterRoutes(sc.mux)

	pluginHandler := plugins.NewHandler(sc.mctx)
	pluginHandler.RegisterRoutes(sc.mux)

	notificationHandler := notifications.NewHandler(sc.Notices)
	notificationHandler.RegisterRoutes(sc.mux)

	journalHandler := journalapi.NewHandler(sc.Journal)
	journalHandler.RegisterRoutes(sc.mux)

	statusHandler := status.NewHandler(sc.mctx, sc.Config.OriginPatterns)
	statusHandler.RegisterRoutes(sc.mux)

	sc.mux.Handle("GET /metrics", promhttp.Handler())

	return sc, nil
}

// RunServer will start listening for connections
func (sc *ServerConfig) RunServer() {
	slog.Info(">>runServer")
	defer slog.Info("<<runServer")

	defer sc.close()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", sc.ServerPort),
		Handler: sc.mux,
	}

	slog.Info("Starting server", "port", sc.ServerPort, "device", sc.Config.DeviceURL)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
	}

	sc.mctx.CancelAndWait()
}

func (sc *ServerConfig) close() {
	if sc.DBConnection != nil {
		sc.DBConnection.Close()
	}

	if sc.LogFile != nil && sc.LogFile != os.Stderr {
		sc.LogFile.Close()
	}
}

func initializeServerConfig() (*ServerConfig, error) {
	slog.Info(">>initalizeServerConfig")
	defer slog.Info("<<initalizeServerConfig")

	sc := &ServerConfig{}

	// MUST BE FIRST
	sc.readEnvironmentVariables()

	sc.configureLogger()

	cfg, err := config.LoadConfigSettings(sc.ConfigFileLocation)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no config file, using defaults", "file", sc.ConfigFileLocation)
		cfg = config.Default()
	} else if err != nil {
		slog.Error("failed to load config file", "error", err)
		return nil, err
	}
	sc.Config = cfg

	if err := sc.openDatabase(); err != nil {
		return nil, err
	}

	return sc, nil
}

func (sc *ServerConfig) readEnvironmentVariables() {
	slog.Info(">>loadConfiguration")
	defer slog.Info("<<loadConfiguration")

	// load the environment
	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	sc.DatabaseURL = os.Getenv("DATABASE_URL")

	sc.ServerPort = os.Getenv("PORT")
	if len(sc.ServerPort) == 0 {
		sc.ServerPort = DEFAULT_SERVER_PORT
	}

	sc.ApiKey = os.Getenv("API_KEY")
	sc.LogFileLocation = os.Getenv("LOG_FILE_LOCATION")

	sc.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}

	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioAuthToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFromPhone := os.Getenv("TWILIO_FROM_PHONE_NO")
	twilioToPhone := os.Getenv("TWILIO_TO_PHONE_NO")
	if len(twilioAccountSID) != 0 {
		slog.Info("Twilio account information present, configuring Notifier")

		twilioService, err := twilio.New(twilioAccountSID, twilioAuthToken, twilioFromPhone)
		if err != nil {
			log.Fatalf("failed to initialize Twilio service: %v", err)
		}

		twilioService.AddReceivers(twilioToPhone)

		notifier := notify.New()
		notifier.UseServices(twilioService)
		sc.Notifier = notifier
	}
}

// configureLogger will initialize the slog to stderr and save the log level so it can be set via API.
func (sc *ServerConfig) configureLogger() {
	slog.Info(">>configureLogger")
	defer slog.Info("<<configureLogger")

	currentLevel := new(slog.LevelVar)

	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	currentLevel.Set(level)

	// by default we will write to stderr
	logFile := os.Stderr
	if len(sc.LogFileLocation) != 0 {
		slog.Info("Save to log file", "file", sc.LogFileLocation)
		logFile, err = os.OpenFile(sc.LogFileLocation, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			slog.Warn("Failed to open log file", "error", err)
			os.Exit(1)
		}
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: currentLevel})

	logger := slog.New(fileHandler)

	slog.SetDefault(logger)

	sc.Logger = logger
	sc.LoggerLevel = currentLevel
	sc.LogFile = logFile
}

// openDatabase connects the journal to postgres. Without DATABASE_URL the journal is kept in
// memory.
func (sc *ServerConfig) openDatabase() error {
	if len(sc.DatabaseURL) == 0 {
		slog.Warn("no database connection string is configured, journal is kept in memory")
		sc.Journal = journal.NewMemoryStore(0)
		return nil
	}

	db, err := sql.Open("postgres", sc.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		return err
	}

	sc.DBConnection = db
	sc.Queries = database.New(db)
	sc.Journal = journal.NewPostgresStore(sc.Queries)

	return nil
}
