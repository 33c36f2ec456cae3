package sensor

var catalog = map[string]PluginInfo{
	PLUGIN_ONEWIRE: {
		Name:        PLUGIN_ONEWIRE,
		Title:       "1-Wire",
		Unit:        "°C",
		Description: "1-Wire is a device communications bus system designed by Dallas Semiconductor Corp. that provides low-speed data, signaling, and power over a single signal.",
	},
	PLUGIN_ANALOG: {
		Name:        PLUGIN_ANALOG,
		Title:       "Analog",
		Unit:        "V",
		Description: "Analog plugin uses the built-in analog to digital (ADC) converter to measure analog voltages.",
	},
	PLUGIN_GPIO: {
		Name:        PLUGIN_GPIO,
		Title:       "GPIO",
		Unit:        "Imp",
		Description: "GPIO plugin is used to register and count digital pulses.",
	},
	PLUGIN_WIFI: {
		Name:        PLUGIN_WIFI,
		Title:       "WiFi",
		Unit:        "dbm",
		Description: "WiFi plugin measures the received signal strength indicator (RSSI) of the WiFi signal.",
	},
	PLUGIN_DHT: {
		Name:        PLUGIN_DHT,
		Title:       "DHT",
		Unit:        "°C",
		Description: "DHT sensors are basic, ultra low-cost digital temperature and humidity sensors.",
	},
}

// Plugin returns the presentation info of a plugin. Unknown plugins are titled by their name
// and carry no unit.
func Plugin(name string) PluginInfo {
	if info, ok := catalog[name]; ok {
		return info
	}

	return PluginInfo{Name: name, Title: name}
}

// ChannelType derives the middleware channel type for a sensor.
func ChannelType(plugin, addr string) string {
	switch plugin {
	case PLUGIN_ONEWIRE:
		return CHANNEL_TEMPERATURE
	case PLUGIN_DHT:
		if addr == DHT_ADDR_TEMPERATURE {
			return CHANNEL_TEMPERATURE
		}
		return CHANNEL_HUMIDITY
	case PLUGIN_ANALOG:
		return CHANNEL_VOLTAGE
	case PLUGIN_WIFI:
		return CHANNEL_RSSI
	default:
		return CHANNEL_POWERSENSOR
	}
}

// Unit derives the display unit for a sensor. DHT sensors share one plugin but measure two
// quantities, so the unit depends on the address.
func Unit(plugin, addr string) string {
	if plugin == PLUGIN_DHT {
		if addr == DHT_ADDR_TEMPERATURE {
			return "°C"
		}
		return "%"
	}

	return Plugin(plugin).Unit
}

// New builds a sensor with its unit derived from plugin and address.
func New(plugin, addr, hash string, value *float64, uuid string) Sensor {
	return Sensor{
		Plugin: plugin,
		Addr:   addr,
		Hash:   hash,
		Value:  value,
		Unit:   Unit(plugin, addr),
		UUID:   uuid,
	}
}

// Key identifies a sensor on its device.
func (s Sensor) Key() string {
	return Key(s.Plugin, s.Addr)
}

func Key(plugin, addr string) string {
	return plugin + "/" + addr
}

func (s Sensor) ChannelType() string {
	return ChannelType(s.Plugin, s.Addr)
}

func (s Sensor) Connected() bool {
	return s.UUID != ""
}
