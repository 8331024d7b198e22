package utils

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/joho/godotenv"
)

// Environment variables overriding the configuration file.
const (
	EnvDirectory    = "APMAPPER_DIRECTORY"
	EnvLogLevel     = "APMAPPER_LOG_LEVEL"
	EnvMQTTBroker   = "APMAPPER_MQTT_BROKER"
	EnvMQTTPassword = "APMAPPER_MQTT_PASSWORD"
	EnvS3Endpoint   = "APMAPPER_S3_ENDPOINT"
	EnvS3AccessKey  = "APMAPPER_S3_ACCESS_KEY"
	EnvS3SecretKey  = "APMAPPER_S3_SECRET_KEY"
)

// Config represents the structure of the configuration file.
type Config struct {
	LogLevel string `yaml:"log_level"` // zerolog level name

	Input struct {
		Directory     string `yaml:"directory"`      // Directory holding *.pcapng, *.nmea and *.22000 files
		DecodeWorkers int    `yaml:"decode_workers"` // Capture files decoded in parallel
	} `yaml:"input"`

	Model struct {
		RSSIAt1m              float64 `yaml:"rssi_at_1m"`              // Reference signal strength at 1 m (dBm)
		PathLossExponent      float64 `yaml:"path_loss_exponent"`      // Path loss exponent of the environment
		MinObservationSpacing float64 `yaml:"min_observation_spacing"` // Minimum distance between kept observations (m)
		MaxIterations         int     `yaml:"max_iterations"`          // Trilateration gradient descent iterations
		LearningRate          float64 `yaml:"learning_rate"`           // Trilateration step size
		ConvergenceThreshold  float64 `yaml:"convergence_threshold"`   // Trilateration stop threshold (degrees)
	} `yaml:"model"`

	Enrichment struct {
		HashcatEnabled bool          `yaml:"hashcat_enabled"` // Bind passwords cracked by hashcat
		HashcatTimeout time.Duration `yaml:"hashcat_timeout"` // Timeout of one hashcat invocation
		VendorFile     string        `yaml:"vendor_file"`     // OUI registry merged over the built-in sample table
	} `yaml:"enrichment"`

	Output struct {
		CSV     string `yaml:"csv"`     // CSV export path, empty disables
		KML     string `yaml:"kml"`     // KML export path, empty disables
		Wigle   string `yaml:"wigle"`   // WiGLE CSV export path, empty disables
		SQLite  string `yaml:"sqlite"`  // SQLite database path, empty disables
		Metrics string `yaml:"metrics"` // Prometheus textfile path, empty disables
		Filter  bool   `yaml:"filter"`  // Also write *_filtered CSV/KML with accessible networks only
	} `yaml:"output"`

	MQTT struct {
		Enabled       bool          `yaml:"enabled"`        // Publish located access points
		Broker        string        `yaml:"broker"`         // MQTT broker address
		ClientID      string        `yaml:"client_id"`      // MQTT client ID, generated when empty
		Username      string        `yaml:"username"`       // Broker username
		Password      string        `yaml:"password"`       // Broker password
		CACertificate string        `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
		Topic         string        `yaml:"topic"`          // Topic prefix, one message per access point
		QOS           int           `yaml:"qos"`            // MQTT QoS level
		Timeout       time.Duration `yaml:"timeout"`        // Connect and publish timeout
	} `yaml:"mqtt"`

	S3 struct {
		Enabled   bool   `yaml:"enabled"`    // Upload export files
		Endpoint  string `yaml:"endpoint"`   // S3 endpoint host:port
		AccessKey string `yaml:"access_key"` // Access key ID
		SecretKey string `yaml:"secret_key"` // Secret access key
		UseSSL    bool   `yaml:"use_ssl"`    // Use HTTPS
		Bucket    string `yaml:"bucket"`     // Destination bucket
		Region    string `yaml:"region"`     // Bucket region
		Prefix    string `yaml:"prefix"`     // Object key prefix
	} `yaml:"s3"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	var config Config
	config.LogLevel = "info"
	config.Input.Directory = "."
	config.Input.DecodeWorkers = runtime.NumCPU()
	config.Model.RSSIAt1m = -35
	config.Model.PathLossExponent = 2.5
	config.Model.MinObservationSpacing = 5
	config.Model.MaxIterations = 100
	config.Model.LearningRate = 0.001
	config.Model.ConvergenceThreshold = 1e-6
	config.Enrichment.HashcatEnabled = true
	config.Enrichment.HashcatTimeout = constants.DefaultHashcatTimeout
	config.MQTT.Topic = constants.DefaultMQTTTopic
	config.MQTT.QOS = constants.DefaultMQTTQOS
	config.MQTT.Timeout = constants.DefaultMQTTTimeout
	config.S3.Region = constants.DefaultS3Region
	return &config
}

// LoadConfig loads the YAML configuration from the specified file over the defaults.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig()
	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}
	return config, nil
}

// LoadEnv reads an optional .env file into the process environment and applies the
// APMAPPER_* overrides to config. A missing .env file is not an error.
func LoadEnv(config *Config, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	overrides := []struct {
		name   string
		target *string
	}{
		{EnvDirectory, &config.Input.Directory},
		{EnvLogLevel, &config.LogLevel},
		{EnvMQTTBroker, &config.MQTT.Broker},
		{EnvMQTTPassword, &config.MQTT.Password},
		{EnvS3Endpoint, &config.S3.Endpoint},
		{EnvS3AccessKey, &config.S3.AccessKey},
		{EnvS3SecretKey, &config.S3.SecretKey},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			*o.target = v
		}
	}
	return nil
}

// Validate checks the values that would otherwise produce meaningless estimates.
func (c *Config) Validate() error {
	var errs []error
	if c.Input.Directory == "" {
		errs = append(errs, errors.New("input.directory must not be empty"))
	}
	if c.Model.PathLossExponent <= 0 {
		errs = append(errs, fmt.Errorf("model.path_loss_exponent must be positive, got %v", c.Model.PathLossExponent))
	}
	if c.Model.MinObservationSpacing < 0 {
		errs = append(errs, fmt.Errorf("model.min_observation_spacing must not be negative, got %v", c.Model.MinObservationSpacing))
	}
	if c.Model.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("model.max_iterations must not be negative, got %d", c.Model.MaxIterations))
	}
	if c.Model.LearningRate <= 0 {
		errs = append(errs, fmt.Errorf("model.learning_rate must be positive, got %v", c.Model.LearningRate))
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}
	if c.MQTT.QOS < 0 || c.MQTT.QOS > 2 {
		errs = append(errs, fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QOS))
	}
	if c.S3.Enabled && (c.S3.Endpoint == "" || c.S3.Bucket == "") {
		errs = append(errs, errors.New("s3.endpoint and s3.bucket are required when s3 is enabled"))
	}
	return errors.Join(errs...)
}
