package audit

import (
	"context"

	"go.uber.org/zap"
)

// ZapSink writes audit events as structured log lines. Failed outcomes are
// logged at warn level.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger.Named("audit")}
}

func (s *ZapSink) Emit(_ context.Context, event Event) {
	fields := make([]zap.Field, 0, 6+len(event.Metadata))
	fields = append(fields,
		zap.String("event_type", event.EventType),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	)
	if event.RecordID != "" {
		fields = append(fields, zap.String("record_id", event.RecordID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}

	if event.Success {
		s.logger.Info("audit", fields...)
		return
	}
	s.logger.Warn("audit", fields...)
}
