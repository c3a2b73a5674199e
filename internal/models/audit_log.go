package models

// AuditLog records sensitive user operations for security and compliance.
// UserID is empty for pipeline operations authenticated by API key.
type AuditLog struct {
	Base
	UserID       string `gorm:"index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
