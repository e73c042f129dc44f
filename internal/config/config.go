package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultGeocodeURL    = "https://naveropenapi.apigw.ntruss.com/map-geocode/v2/geocode"
	DefaultDirectionsURL = "https://naveropenapi.apigw.ntruss.com/map-direction/v1/transit"
	DefaultRouteOption   = "trafast"
	DefaultEventsTopic   = "route.search.events"
	DefaultEventQueue    = 256
)

// NaverConfig holds credentials and endpoints for the Naver Cloud Platform Maps APIs.
type NaverConfig struct {
	ClientID      string
	ClientSecret  string
	GeocodeURL    string        `validate:"required,url"`
	DirectionsURL string        `validate:"required,url"`
	RouteOption   string        `validate:"required,alphanum"`
	Timeout       time.Duration `validate:"gte=0"`
}

// HasCredentials reports whether both API credentials are configured.
func (c NaverConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// KafkaConfig holds settings for the optional search event producer.
type KafkaConfig struct {
	Brokers []string `validate:"dive,hostname_port"`
	Topic   string   `validate:"required"`

	// QueueSize bounds the events buffered in front of the broker.
	QueueSize int `validate:"gte=0"`
}

// Enabled reports whether search events should be published.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// ServiceConfig holds all configuration for the route search service.
// It is built once at startup and passed by value or pointer; nothing mutates it afterwards.
type ServiceConfig struct {
	Host         string `validate:"omitempty,ip|hostname"`
	Port         string `validate:"required,numeric"`
	AppEnv       string `validate:"required,oneof=development staging production test"`
	StationsFile string
	Naver        NaverConfig
	Kafka        KafkaConfig
}

// Addr returns the listen address.
func (c *ServiceConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads configuration from environment variables and an optional config file.
// The file is named by CONFIG_FILE, or config.yaml in the working directory if present.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a ServiceConfig from an already populated viper instance.
func FromViper(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		Host:         v.GetString("host"),
		Port:         v.GetString("port"),
		AppEnv:       strings.ToLower(v.GetString("app_env")),
		StationsFile: v.GetString("stations_file"),
		Naver: NaverConfig{
			ClientID:      v.GetString("naver_client_id"),
			ClientSecret:  v.GetString("naver_client_secret"),
			GeocodeURL:    v.GetString("geocode_url"),
			DirectionsURL: v.GetString("directions_url"),
			RouteOption:   v.GetString("route_option"),
			Timeout:       v.GetDuration("upstream_timeout"),
		},
		Kafka: KafkaConfig{
			Brokers:   splitList(v.GetString("kafka_brokers")),
			Topic:     v.GetString("kafka_topic"),
			QueueSize: v.GetInt("kafka_queue_size"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "10000")
	v.SetDefault("app_env", "development")
	v.SetDefault("geocode_url", DefaultGeocodeURL)
	v.SetDefault("directions_url", DefaultDirectionsURL)
	v.SetDefault("route_option", DefaultRouteOption)
	v.SetDefault("upstream_timeout", "0s")
	v.SetDefault("kafka_topic", DefaultEventsTopic)
	v.SetDefault("kafka_queue_size", DefaultEventQueue)
	// Registered so AutomaticEnv picks them up through Get.
	v.SetDefault("naver_client_id", "")
	v.SetDefault("naver_client_secret", "")
	v.SetDefault("stations_file", "")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("config_file", "")
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
