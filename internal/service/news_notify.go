package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/deppfellow/app-functions/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// Broadcaster publishes a payload to a topic. *push.Client satisfies it.
type Broadcaster interface {
	Publish(ctx context.Context, topic string, data any) (int64, error)
}

// NewsNotifyService broadcasts a notification for every created news item.
type NewsNotifyService struct {
	broadcaster Broadcaster
	topic       string
	now         func() time.Time
	logger      *zerolog.Logger
}

func NewNewsNotifyService(b Broadcaster, topic string, logger *zerolog.Logger) *NewsNotifyService {
	return &NewsNotifyService{broadcaster: b, topic: topic, now: time.Now, logger: logger}
}

// Notify formats and broadcasts the notification. It never fails: a
// delivery error is logged and the notification is still returned.
func (s *NewsNotifyService) Notify(ctx context.Context, evt model.NewsCreatedEvent) model.NewsNotification {
	n := model.NewsNotification{
		Title:     evt.Title,
		Timestamp: formatTimestamp(evt.Timestamp, s.now),
		ID:        evt.ID,
	}

	log := loggerFrom(ctx, s.logger).With().
		Str("news_id", evt.ID).
		Str("topic", s.topic).
		Logger()

	receivers, err := s.broadcaster.Publish(ctx, s.topic, n)
	if err != nil {
		log.Error().Err(err).Msg("failed to broadcast news notification")
		return n
	}

	log.Info().Int64("receivers", receivers).Msg("news notification sent")
	return n
}

// Values above this are epoch milliseconds rather than seconds.
const epochMillisThreshold = 1e12

// formatTimestamp normalizes a producer timestamp to RFC3339 UTC. Strings
// are parsed as dates or numeric epochs; numbers as epoch seconds or
// milliseconds. Anything else falls back to now.
func formatTimestamp(v any, now func() time.Time) string {
	if t, ok := parseTimestamp(v); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return now().UTC().Format(time.RFC3339)
}

func parseTimestamp(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil, bool:
		return time.Time{}, false
	case time.Time:
		return val, !val.IsZero()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := cast.ToFloat64E(s); err == nil {
			return fromEpoch(f)
		}
		t, err := cast.ToTimeE(s)
		if err != nil {
			return time.Time{}, false
		}
		return validYear(t)
	default:
		f, err := cast.ToFloat64E(val)
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(f)
	}
}

func fromEpoch(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if math.Abs(f) > epochMillisThreshold {
		return validYear(time.UnixMilli(int64(f)))
	}
	sec, frac := math.Modf(f)
	return validYear(time.Unix(int64(sec), int64(frac*1e9)))
}

// validYear rejects times RFC3339 cannot represent.
func validYear(t time.Time) (time.Time, bool) {
	y := t.UTC().Year()
	return t, y >= 0 && y <= 9999
}
