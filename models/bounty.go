package models

import "time"

// Bounty statuses as reported by the on-chain contract.
const (
	BountyStatusOpen      = "OPEN"
	BountyStatusCompleted = "COMPLETED"
	BountyStatusClosed    = "CLOSED"
	BountyStatusCancelled = "CANCELLED"
)

// Bounty is a local mirror of an on-chain bounty contract plus the listing
// metadata that never touches the chain (title, description, issue URL).
// Rows are written by the provider listing flow and kept current by the
// bounty sync worker; LastSyncedAt marks the most recent reconciliation.
type Bounty struct {
	ID              string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	ContractAddress string `gorm:"type:varchar(128);uniqueIndex;not null" json:"contractAddress"`
	BountyProvider  string `gorm:"type:varchar(128);index;not null" json:"bountyProvider"` // provider wallet address
	BountyAmount    float64 `gorm:"not null" json:"bountyAmount"`

	TimeInterval     int64 `gorm:"not null" json:"timeInterval"`
	InitialTimestamp int64 `gorm:"not null" json:"initialTimestamp"`

	Status        string   `gorm:"type:varchar(16);index;not null;default:OPEN" json:"status"`
	BountyHunters []string `gorm:"serializer:json" json:"bountyHunters"` // wallet addresses of joined hunters
	BountyWinner  *string  `json:"bountyWinner,omitempty"`

	IssueURL    string `gorm:"not null" json:"issueURL"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description,omitempty"`

	ExpiresAt    time.Time `gorm:"index;not null" json:"expiresAt"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
