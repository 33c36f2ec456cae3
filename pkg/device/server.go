package device

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/KyleBrandon/vzero-dashboard/config"
	"github.com/KyleBrandon/vzero-dashboard/internal/database"
	"github.com/KyleBrandon/vzero-dashboard/internal/probe"
	"github.com/KyleBrandon/vzero-dashboard/pkg/utils"
	"github.com/joho/godotenv"
)

const (
	DEFAULT_DEVICE_PORT          = "80"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"
)

var (
	cmdLineFlagLogLevel     string
	cmdLineFlagUseMockProbe bool
)

type DeviceServer struct {
	mux                *http.ServeMux
	ServerPort         string
	DatabaseURL        string
	ConfigFileLocation string
	LoggerLevel        *slog.LevelVar

	Config       config.DeviceConfig
	Probe        probe.Probe
	Bindings     BindingStore
	Device       *Device
	DBConnection *sql.DB
}

func init() {
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the device at")
	flag.BoolVar(&cmdLineFlagUseMockProbe, "use_mock_probe", false, "Serve fixed readings instead of reading the hardware")
}

// InitializeDevice opens the probe, restores the sensor bindings and registers the device API.
func InitializeDevice() (*DeviceServer, error) {
	slog.Debug(">>InitializeDevice")
	defer slog.Debug("<<InitializeDevice")

	ds := &DeviceServer{}
	ds.readEnvironmentVariables()
	ds.configureLogger()

	cfg, err := config.LoadConfigSettings(ds.ConfigFileLocation)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no config file, using defaults", "file", ds.ConfigFileLocation)
		cfg = config.Default()
	} else if err != nil {
		slog.Error("failed to load config file", "error", err)
		return nil, err
	}
	ds.Config = cfg.Device

	if err := ds.openDatabase(); err != nil {
		return nil, err
	}

	ds.Probe, err = probe.NewProbe(ds.Config, cmdLineFlagUseMockProbe)
	if err != nil {
		slog.Error("failed to open the probe", "error", err)
		return nil, err
	}

	ds.Device = NewDevice(ds.Config, ds.Probe, ds.Bindings)
	if err := ds.Device.Start(context.Background()); err != nil {
		return nil, err
	}

	ds.mux = http.NewServeMux()
	handler := NewHandler(ds.Device)
	handler.RegisterRoutes(ds.mux)

	return ds, nil
}

func (ds *DeviceServer) RunServer() {
	slog.Info(">>RunServer")
	defer slog.Info("<<RunServer")

	defer ds.close()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", ds.ServerPort),
		Handler: ds.mux,
	}

	slog.Info("Starting device", "port", ds.ServerPort, "serial", ds.Device.cfg.Serial)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("Device server failed", "error", err)
	}
}

func (ds *DeviceServer) close() {
	ds.Device.CancelAndWait()

	if err := ds.Probe.Close(); err != nil {
		slog.Warn("failed to close the probe", "error", err)
	}

	if ds.DBConnection != nil {
		ds.DBConnection.Close()
	}
}

func (ds *DeviceServer) readEnvironmentVariables() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	ds.DatabaseURL = os.Getenv("DATABASE_URL")

	ds.ServerPort = os.Getenv("DEVICE_PORT")
	if len(ds.ServerPort) == 0 {
		ds.ServerPort = DEFAULT_DEVICE_PORT
	}

	ds.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	if len(ds.ConfigFileLocation) == 0 {
		ds.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}
}

func (ds *DeviceServer) configureLogger() {
	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	ds.LoggerLevel = new(slog.LevelVar)
	ds.LoggerLevel.Set(level)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: ds.LoggerLevel}))
	slog.SetDefault(logger)
}

// openDatabase persists bindings to postgres. Without DATABASE_URL they are kept in memory.
func (ds *DeviceServer) openDatabase() error {
	if len(ds.DatabaseURL) == 0 {
		slog.Warn("no database connection string is configured, sensor bindings are kept in memory")
		ds.Bindings = NewMemoryBindings()
		return nil
	}

	db, err := sql.Open("postgres", ds.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		return err
	}

	ds.DBConnection = db
	ds.Bindings = NewPostgresBindings(database.New(db))

	return nil
}
