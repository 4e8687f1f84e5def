package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ToEvent coerces a create request into an Event. Only the timestamps are
// checked: anything that cannot be read as a point in time is rejected.
// Timestamps without a zone are read in location.
func ToEvent(request EventRequest, location *time.Location) (*Event, error) {
	start, err := ParseTimestamp(request.Start, location)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	end, err := ParseTimestamp(request.End, location)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	return &Event{
		Title:       request.Title,
		Start:       start,
		End:         end,
		Url:         request.Url,
		PhoneNumber: request.PhoneNumber,
		Notified:    false,
	}, nil
}

// ParseTimestamp accepts the string layouts known to cast and JSON numbers as
// unix milliseconds. Strings without a zone are wall-clock time in location.
// Missing values become the zero time.
func ParseTimestamp(value any, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.Local
	}

	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return time.Time{}, nil
		}

		ts, err := cast.ToTimeInDefaultLocationE(strings.TrimSpace(v), location)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, v)
		}

		return ts, nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, value)
	}
}
