package events

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const influxConnectTimeout = 5 * time.Second

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxPublisher records every event as a point in the camera_events measurement.
type InfluxPublisher struct {
	client influxdb2.Client
	writer pointWriter
}

func NewInfluxPublisher(cfg InfluxConfig) (*InfluxPublisher, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), influxConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging influxdb %s: %w", cfg.URL, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("influxdb %s is not healthy", cfg.URL)
	}

	return &InfluxPublisher{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

func eventPoint(event Event) *write.Point {
	tags := map[string]string{
		"type":      string(event.Type),
		"camera_id": event.CameraID.String(),
	}
	if event.SensorType != "" {
		tags["sensor_type"] = event.SensorType
	}

	fields := map[string]interface{}{"count": 1}
	if event.SensorID != nil {
		fields["sensor_id"] = event.SensorID.String()
	}
	if event.Data != "" {
		fields["data"] = event.Data
	}

	return write.NewPoint("camera_events", tags, fields, event.OccurredAt)
}

func (p *InfluxPublisher) Publish(ctx context.Context, event Event) error {
	if err := p.writer.WritePoint(ctx, eventPoint(event)); err != nil {
		return fmt.Errorf("writing event point: %w", err)
	}
	return nil
}

func (p *InfluxPublisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
