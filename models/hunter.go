package models

import (
	"time"
)

// BountyHunter is a registered user seeking to solve bounties.
// Created exactly once per identity via the registration service; the
// counters are advanced by the bounty lifecycle as bounties progress.
type BountyHunter struct {
	ID            string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	WalletAddress string `gorm:"type:varchar(128);uniqueIndex;not null" json:"walletAddress"`
	Email         string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name          string `gorm:"not null" json:"name"`

	ProfilePicture *string  `json:"profilePicture,omitempty"`
	Bio            *string  `json:"bio,omitempty"`
	Skills         []string `gorm:"serializer:json" json:"skills"`
	GithubProfile  *string  `json:"githubProfile,omitempty"`

	JoinedDate time.Time `json:"joinedDate"`

	BountiesParticipatedIn int      `gorm:"not null;default:0" json:"bountiesParticipatedIn"`
	BountiesWon            int      `gorm:"not null;default:0" json:"bountiesWon"`
	TotalAmountWon         float64  `gorm:"not null;default:0" json:"totalAmountWon"`
	ActiveBounties         []string `gorm:"serializer:json" json:"activeBounties"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
