package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAlert_Verbs(t *testing.T) {
	v := &Visitor{EntityID: 7, DisplayName: "Ada"}

	assert.Equal(t, "Ada appeared for the first time", NewAlert(AlertNewVisitor, v).Message)
	assert.Equal(t, "Ada came back", NewAlert(AlertReturningVisitor, v).Message)
	assert.Equal(t, "Ada is flagged by the platform", NewAlert(AlertSuspiciousFlag, v).Message)
	assert.Equal(t, "Ada was observed", NewAlert(AlertKind("other"), v).Message)
}

func TestNewAlert_FallsBackToHandle(t *testing.T) {
	v := &Visitor{EntityID: 7, Handle: "ada"}
	a := NewAlert(AlertNewVisitor, v)
	assert.Equal(t, "@ada appeared for the first time", a.Message)
}

func TestNewAlert_StatusMarkers(t *testing.T) {
	v := &Visitor{
		EntityID:    7,
		DisplayName: "Ada",
		IsPremium:   true,
		IsVerified:  true,
		IsContact:   true,
		IsScam:      true,
		IsFake:      true,
	}
	a := NewAlert(AlertReturningVisitor, v)
	assert.Equal(t, "Ada came back [premium] [verified] [contact] [scam] [fake]", a.Message)
}

func TestNewAlert_CarriesEntityAndKind(t *testing.T) {
	v := &Visitor{EntityID: 99, DisplayName: "Ada"}
	a := NewAlert(AlertSuspiciousFlag, v)

	assert.Equal(t, AlertSuspiciousFlag, a.Kind)
	assert.Equal(t, int64(99), a.EntityID)
	assert.False(t, a.IsRead)
	assert.Zero(t, a.AlertID)
}
