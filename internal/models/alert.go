package models

import (
	"fmt"
	"time"
)

type AlertKind string

const (
	AlertNewVisitor       AlertKind = "new-visitor"
	AlertReturningVisitor AlertKind = "returning-visitor"
	AlertSuspiciousFlag   AlertKind = "suspicious-flag"
)

// Alert is one emitted notification row. Only IsRead is mutable after
// creation.
type Alert struct {
	AlertID   int64     `json:"alert_id"`
	Kind      AlertKind `json:"alert_kind"`
	EntityID  int64     `json:"entity_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlert builds an alert for a visitor with a human-readable message
// carrying the visitor's status markers.
func NewAlert(kind AlertKind, v *Visitor) *Alert {
	var verb string
	switch kind {
	case AlertNewVisitor:
		verb = "appeared for the first time"
	case AlertReturningVisitor:
		verb = "came back"
	case AlertSuspiciousFlag:
		verb = "is flagged by the platform"
	default:
		verb = "was observed"
	}

	name := v.DisplayName
	if name == "" && v.Handle != "" {
		name = "@" + v.Handle
	}
	msg := fmt.Sprintf("%s %s", name, verb)
	for _, m := range statusMarkers(v) {
		msg += " [" + m + "]"
	}

	return &Alert{
		Kind:     kind,
		EntityID: v.EntityID,
		Message:  msg,
	}
}

func statusMarkers(v *Visitor) []string {
	var markers []string
	if v.IsPremium {
		markers = append(markers, "premium")
	}
	if v.IsVerified {
		markers = append(markers, "verified")
	}
	if v.IsContact {
		markers = append(markers, "contact")
	}
	if v.IsScam {
		markers = append(markers, "scam")
	}
	if v.IsFake {
		markers = append(markers, "fake")
	}
	return markers
}
