package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// AlertType classifies operational alerts raised around the day boundary
type AlertType string

const (
	AlertSessionOverdue      AlertType = "session_overdue"
	AlertCashVariance        AlertType = "cash_variance"
	AlertStationUnconfigured AlertType = "station_unconfigured"
	AlertTicketStuck         AlertType = "ticket_stuck"
)

// AlertSeverity ranks an alert
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// SessionAlert surfaces a condition needing operator attention. Alerts are
// never auto-resolved; an operator acknowledges them.
type SessionAlert struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID        uuid.UUID `gorm:"type:uuid;index"`
	SessionID      *uuid.UUID
	ShiftID        *uuid.UUID
	Type           AlertType
	Severity       AlertSeverity
	Message        string
	Acknowledged   bool
	AcknowledgedBy *uuid.UUID
	AcknowledgedAt *time.Time
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (SessionAlert) TableName() string {
	return "session_alerts"
}

// NewSessionAlert raises an alert
func NewSessionAlert(storeID uuid.UUID, sessionID, shiftID *uuid.UUID, alertType AlertType, severity AlertSeverity, message string) *SessionAlert {
	return &SessionAlert{
		ID:        uuid.New(),
		StoreID:   storeID,
		SessionID: sessionID,
		ShiftID:   shiftID,
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Acknowledge marks the alert handled
func (a *SessionAlert) Acknowledge(userID uuid.UUID) error {
	if a.Acknowledged {
		return shared.NewValidationError("ALREADY_ACKNOWLEDGED", "Alert is already acknowledged")
	}
	if userID == uuid.Nil {
		return shared.NewValidationError("INVALID_ACTOR", "Acknowledger is required")
	}
	now := time.Now()
	a.Acknowledged = true
	a.AcknowledgedBy = &userID
	a.AcknowledgedAt = &now
	return nil
}
