package device

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Device is a fingerprint terminal reachable through an HTTP gateway at Address.
type Device struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Model     *string    `json:"model,omitempty"`
	Address   string     `json:"address"`
	Location  *string    `json:"location,omitempty"`
	Status    Status     `json:"status"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// SyncResult counts what one poll of a device did with the fetched events.
type SyncResult struct {
	DeviceID string     `json:"device_id"`
	Fetched  int        `json:"fetched"`
	Applied  int        `json:"applied"`
	Skipped  int        `json:"skipped"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}
