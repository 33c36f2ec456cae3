package sensor

const (
	PLUGIN_ONEWIRE string = "1wire"
	PLUGIN_ANALOG  string = "analog"
	PLUGIN_GPIO    string = "gpio"
	PLUGIN_WIFI    string = "wifi"
	PLUGIN_DHT     string = "dht"
)

const (
	CHANNEL_TEMPERATURE string = "temperature"
	CHANNEL_HUMIDITY    string = "humidity"
	CHANNEL_VOLTAGE     string = "voltage"
	CHANNEL_RSSI        string = "rssi"
	CHANNEL_POWERSENSOR string = "powersensor"
)

// DHT_ADDR_TEMPERATURE is the address of the temperature half of a DHT sensor.
const DHT_ADDR_TEMPERATURE = "temp"

type (
	// Sensor is a single measurement point reported by a device plugin. A sensor is connected
	// when UUID holds the identifier of its middleware channel.
	Sensor struct {
		Plugin string   `json:"plugin"`
		Addr   string   `json:"addr"`
		Hash   string   `json:"hash"`
		Value  *float64 `json:"value"`
		Unit   string   `json:"unit"`
		UUID   string   `json:"uuid,omitempty"`
	}

	// PluginInfo describes a device plugin for presentation.
	PluginInfo struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		Unit        string `json:"unit"`
		Description string `json:"description"`
	}
)
