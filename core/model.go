package core

import "time"

type Event struct {
	Id          string    `json:"id,omitempty" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Start       time.Time `json:"start" bson:"start"`
	End         time.Time `json:"end" bson:"end"`
	Url         string    `json:"url" bson:"url"`
	PhoneNumber string    `json:"phoneNumber" bson:"phoneNumber"`
	Notified    bool      `json:"notified" bson:"notified"`
}

// EventRequest is the body accepted by POST /api/events. Start and End are
// coerced into timestamps by ToEvent.
type EventRequest struct {
	Title       string `json:"title"`
	Start       any    `json:"start"`
	End         any    `json:"end"`
	Url         string `json:"url"`
	PhoneNumber string `json:"phoneNumber"`
}

// EventFilter narrows FindEvents. A nil field matches every event.
type EventFilter struct {
	Notified *bool
}

func NotNotified() EventFilter {
	notified := false
	return EventFilter{Notified: &notified}
}
