package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultUSGSURL is the USGS FDSN event query endpoint.
const DefaultUSGSURL = "https://earthquake.usgs.gov/fdsnws/event/1/query"

// maxLimit is the largest result count the USGS query API accepts.
const maxLimit = 20000

// orderings accepted by the USGS "orderby" parameter.
var orderings = map[string]bool{
	"time":          true,
	"time-asc":      true,
	"magnitude":     true,
	"magnitude-asc": true,
}

// Config holds all client settings, populated from environment variables.
type Config struct {
	USGSURL      string
	EventType    string
	MinMagnitude float64
	OrderBy      string
	Limit        int

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// TimeZone names the zone used for row date/time labels; Location is its
	// resolved form. "Local" means the viewer's zone.
	TimeZone string
	Location *time.Location

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publishing of fetched earthquakes.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	connectTimeout, err := parsePositiveDuration("FETCH_CONNECT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	readTimeout, err := parsePositiveDuration("FETCH_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	minMagnitude, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("QUAKE_MIN_MAGNITUDE", "6"), 64)
	if err != nil {
		return nil, errors.New("invalid QUAKE_MIN_MAGNITUDE")
	}

	limit, err := strconv.Atoi(sharedcfg.EnvOrDefault("QUAKE_LIMIT", "10"))
	if err != nil {
		return nil, errors.New("invalid QUAKE_LIMIT")
	}

	tz := sharedcfg.EnvOrDefault("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := &Config{
		USGSURL:      sharedcfg.EnvOrDefault("USGS_URL", DefaultUSGSURL),
		EventType:    sharedcfg.EnvOrDefault("QUAKE_EVENT_TYPE", "earthquake"),
		MinMagnitude: minMagnitude,
		OrderBy:      sharedcfg.EnvOrDefault("QUAKE_ORDER_BY", "time"),
		Limit:        limit,

		ConnectTimeout: connectTimeout,
		ReadTimeout:    readTimeout,

		TimeZone: tz,
		Location: loc,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "earthquakes"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that can also be changed after Load, e.g. by CLI flags.
func (c *Config) Validate() error {
	u, err := url.Parse(c.USGSURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("USGS_URL must be an absolute URL")
	}
	if c.Limit < 1 || c.Limit > maxLimit {
		return fmt.Errorf("QUAKE_LIMIT must be between 1 and %d", maxLimit)
	}
	if c.MinMagnitude < 0 {
		return errors.New("QUAKE_MIN_MAGNITUDE must not be negative")
	}
	if !orderings[c.OrderBy] {
		return fmt.Errorf("invalid QUAKE_ORDER_BY %q", c.OrderBy)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

// QueryURL builds the feed request URL from the base endpoint and query settings.
func (c *Config) QueryURL() string {
	params := url.Values{
		"format":    {"geojson"},
		"eventtype": {c.EventType},
		"orderby":   {c.OrderBy},
		"minmag":    {strconv.FormatFloat(c.MinMagnitude, 'f', -1, 64)},
		"limit":     {strconv.Itoa(c.Limit)},
	}

	u, err := url.Parse(c.USGSURL)
	if err != nil {
		return c.USGSURL + "?" + params.Encode()
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
