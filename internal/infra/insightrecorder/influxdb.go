package insightrecorder

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nagomi-dev/dayflow/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

// NewRecorder builds the configured insight recorder: InfluxDB when
// credentials are present, a noop otherwise.
func NewRecorder(ctx context.Context, cfg *Config) (domain.InsightRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "insight result recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, insight result recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "insight result recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordInsight(ctx context.Context, record domain.InsightRecord) error {
	fastestHour := -1
	if record.FastestHourSet {
		fastestHour = record.FastestHour
	}

	point := influxdb2.NewPoint(
		"insight_request",
		map[string]string{
			"user_id":          record.UserID,
			"narrative_source": record.NarrativeSource,
			"proposal_emitted": strconv.FormatBool(record.ProposalEmitted),
		},
		map[string]any{
			"fastest_hour":    fastestHour,
			"throughput_hour": record.ThroughputHour,
			"sample_count":    record.SampleCount,
			"duration_ms":     record.Duration.Milliseconds(),
		},
		time.Now(),
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write insight result to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("user_id", record.UserID),
		)
	}

	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
