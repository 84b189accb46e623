// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// AuditLog records an administrative mutation or an access decision.
// For mutations ChangeDetails holds the field-level diff; for decisions
// Codename and AccessGranted describe what was asked and answered.
type AuditLog struct {
	Timestamp      time.Time       `json:"timestamp"`
	UserID         string          `json:"user_id"`
	OrganizationID string          `json:"organization_id,omitempty"`
	Action         string          `json:"action"`
	ResourceID     string          `json:"resource_id,omitempty"`
	Codename       string          `json:"codename,omitempty"`
	AccessGranted  bool            `json:"access_granted"`
	ChangeDetails  json.RawMessage `json:"change_details,omitempty"`
}
