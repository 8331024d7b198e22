package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/pkg/mqtt"
	"github.com/rs/zerolog"
)

const publishRetries = 3

// AccessPointMessage is the MQTT payload for one located access point.
type AccessPointMessage struct {
	RunID             string  `json:"run_id"`
	MAC               string  `json:"mac"`
	SSID              string  `json:"ssid,omitempty"`
	Security          string  `json:"security"`
	Channel           *uint8  `json:"channel,omitempty"`
	Vendor            string  `json:"vendor,omitempty"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Method            string  `json:"method"`
	Observations      int     `json:"observations"`
	PasswordRecovered bool    `json:"password_recovered"`
}

// NewAccessPointMessage builds the payload of an estimated access point.
func NewAccessPointMessage(runID string, ap *models.AccessPoint) AccessPointMessage {
	msg := AccessPointMessage{
		RunID:             runID,
		MAC:               ap.MAC.String(),
		SSID:              ap.SSIDOrEmpty(),
		Security:          ap.SecurityOrUnknown().String(),
		Channel:           ap.Channel,
		Method:            ap.MethodOrUnknown(),
		Observations:      len(ap.Observations),
		PasswordRecovered: ap.Password != nil,
	}
	if ap.Vendor != nil {
		msg.Vendor = *ap.Vendor
	}
	if ap.EstimatedPosition != nil {
		msg.Latitude = ap.EstimatedPosition.Latitude
		msg.Longitude = ap.EstimatedPosition.Longitude
	}
	return msg
}

// MQTTSink publishes every estimated access point to <topic>/<mac>.
type MQTTSink struct {
	client     mqtt.MQTTClient
	connect    func() error
	topic      string
	qos        int
	timeout    time.Duration
	retryDelay time.Duration
	logger     zerolog.Logger
}

// NewMQTTSink creates an MQTTSink. connect, when not nil, is called before the first publish.
func NewMQTTSink(client mqtt.MQTTClient, connect func() error, topic string, qos int, timeout time.Duration, logger zerolog.Logger) *MQTTSink {
	if topic == "" {
		topic = constants.DefaultMQTTTopic
	}
	if timeout <= 0 {
		timeout = constants.DefaultMQTTTimeout
	}
	return &MQTTSink{
		client:     client,
		connect:    connect,
		topic:      topic,
		qos:        qos,
		timeout:    timeout,
		retryDelay: time.Second,
		logger:     logger,
	}
}

// SetRetryDelay changes the base delay between publish attempts.
func (s *MQTTSink) SetRetryDelay(d time.Duration) {
	s.retryDelay = d
}

// Name implements Sink.
func (s *MQTTSink) Name() string {
	return "mqtt"
}

// Write publishes the estimated access points of report.
func (s *MQTTSink) Write(ctx context.Context, report *models.Report) error {
	if s.connect != nil {
		if err := s.connect(); err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		defer s.client.Disconnect(250)
	}

	aps := report.Estimated()
	failed := 0
	for _, ap := range aps {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		payload, err := json.Marshal(NewAccessPointMessage(report.Summary.RunID, ap))
		if err != nil {
			return fmt.Errorf("failed to serialize access point %s: %w", ap.MAC, err)
		}
		if err := s.publish(ctx, s.topic+"/"+ap.MAC.String(), payload); err != nil {
			failed++
			s.logger.Error().Err(err).Str("mac", ap.MAC.String()).Msg("Failed to publish access point")
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to publish %d of %d access points", failed, len(aps))
	}
	s.logger.Info().Str("topic", s.topic).Int("access_points", len(aps)).Msg("Access points published")
	return nil
}

func (s *MQTTSink) publish(ctx context.Context, topic string, payload []byte) error {
	var lastErr error
	for i := 0; i < publishRetries; i++ {
		token := s.client.Publish(topic, byte(s.qos), false, payload)
		if !token.WaitTimeout(s.timeout) {
			lastErr = fmt.Errorf("publish to %s timed out", topic)
		} else if lastErr = token.Error(); lastErr == nil {
			return nil
		}

		s.logger.Warn().Err(lastErr).Int("retry", i+1).Msg("Retrying to publish access point...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * s.retryDelay):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", publishRetries, lastErr)
}
