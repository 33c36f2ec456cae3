package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const DefaultLogLevel = slog.LevelInfo

const (
	DefaultDeviceURL                = "http://localhost:80"
	DefaultRequestTimeoutSeconds    = 5
	DefaultChannelTimeoutSeconds    = 10
	DefaultHeartbeatIntervalSeconds = 10
	DefaultSensorIntervalSeconds    = 30
	DefaultNoticeTimeoutSeconds     = 10
	DefaultPluginIntervalSeconds    = 30
	DefaultBuild                    = "0.4.0"
)

type Config struct {
	DeviceURL                string       `json:"device_url"`
	MiddlewareURL            string       `json:"middleware_url"`
	RequestTimeoutSeconds    int          `json:"request_timeout_seconds"`
	ChannelTimeoutSeconds    int          `json:"channel_timeout_seconds"`
	HeartbeatIntervalSeconds int          `json:"heartbeat_interval_seconds"`
	SensorIntervalSeconds    int          `json:"sensor_interval_seconds"`
	NoticeTimeoutSeconds     int          `json:"notice_timeout_seconds"`
	OriginPatterns           []string     `json:"origin_patterns"`
	Device                   DeviceConfig `json:"device"`
}

// DeviceConfig holds the settings of the vzero-device binary.
type DeviceConfig struct {
	Serial                string   `json:"serial"`
	Build                 string   `json:"build"`
	SSID                  string   `json:"ssid"`
	Middleware            string   `json:"middleware"`
	OneWire               bool     `json:"one_wire"`
	GPIOPins              []int    `json:"gpio_pins"`
	WifiInterface         string   `json:"wifi_interface"`
	PluginIntervalSeconds int      `json:"plugin_interval_seconds"`
	Plugins               []string `json:"plugins"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DeviceURL, validation.Required, is.URL),
		validation.Field(&c.MiddlewareURL, is.URL),
		validation.Field(&c.RequestTimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.ChannelTimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.HeartbeatIntervalSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.SensorIntervalSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.NoticeTimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.Device),
	)
}

func (d DeviceConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Middleware, is.URL),
		validation.Field(&d.GPIOPins, validation.Each(validation.Min(0), validation.Max(27))),
		validation.Field(&d.Plugins, validation.Each(validation.In("1wire", "analog", "gpio", "wifi", "dht"))),
		validation.Field(&d.PluginIntervalSeconds, validation.Min(1)),
	)
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) ChannelTimeout() time.Duration {
	return time.Duration(c.ChannelTimeoutSeconds) * time.Second
}

func (c Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSeconds) * time.Second
}

func (c Config) SensorInterval() time.Duration {
	return time.Duration(c.SensorIntervalSeconds) * time.Second
}

func (c Config) NoticeTimeout() time.Duration {
	return time.Duration(c.NoticeTimeoutSeconds) * time.Second
}

// applyDefaults fills every zero setting with its default.
func (c *Config) applyDefaults() {
	if c.DeviceURL == "" {
		c.DeviceURL = DefaultDeviceURL
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.ChannelTimeoutSeconds == 0 {
		c.ChannelTimeoutSeconds = DefaultChannelTimeoutSeconds
	}
	if c.HeartbeatIntervalSeconds == 0 {
		c.HeartbeatIntervalSeconds = DefaultHeartbeatIntervalSeconds
	}
	if c.SensorIntervalSeconds == 0 {
		c.SensorIntervalSeconds = DefaultSensorIntervalSeconds
	}
	if c.NoticeTimeoutSeconds == 0 {
		c.NoticeTimeoutSeconds = DefaultNoticeTimeoutSeconds
	}
	if c.Device.Build == "" {
		c.Device.Build = DefaultBuild
	}
	if c.Device.PluginIntervalSeconds == 0 {
		c.Device.PluginIntervalSeconds = DefaultPluginIntervalSeconds
	}
	if c.Device.WifiInterface == "" {
		c.Device.WifiInterface = "wlan0"
	}
}

// Default returns a configuration with every default applied, used when no config file exists.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func LoadConfigSettings(filename string) (Config, error) {
	var config Config
	file, err := os.Open(filename)
	if err != nil {
		return config, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}
