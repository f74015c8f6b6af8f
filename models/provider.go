package models

import (
	"time"
)

// Verification methods accepted by the org verification flow.
const (
	VerificationMethodToken  = "token"
	VerificationMethodBranch = "branch"
)

// BountyProvider is a registered user or organization funding bounties.
// AvailableBalance + LockedBalance equals the funds held on the provider's
// behalf; both are mutated only by the bounty funding/payout path and the
// balance sync worker.
type BountyProvider struct {
	ID            string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	WalletAddress string `gorm:"type:varchar(128);uniqueIndex;not null" json:"walletAddress"`
	Email         string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name          string `gorm:"not null" json:"name"`

	ProfilePicture *string `json:"profilePicture,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Website        *string `json:"website,omitempty"`
	GithubProfile  *string `json:"githubProfile,omitempty"`

	OrganizationName   *string `json:"organizationName,omitempty"`
	OrganizationRole   *string `json:"organizationRole,omitempty"`
	OrganizationGithub *string `json:"organizationGithub,omitempty"`

	// Bounty management
	BountiesListed         int      `gorm:"not null;default:0" json:"bountiesListed"`
	BountiesDistributed    int      `gorm:"not null;default:0" json:"bountiesDistributed"`
	TotalAmountDistributed float64  `gorm:"not null;default:0" json:"totalAmountDistributed"`
	ActiveBounties         []string `gorm:"serializer:json" json:"activeBounties"`
	CompletedBounties      []string `gorm:"serializer:json" json:"completedBounties"`

	// Financial information
	AvailableBalance float64 `gorm:"not null;default:0" json:"availableBalance"`
	LockedBalance    float64 `gorm:"not null;default:0" json:"lockedBalance"`

	// GitHub organization verification
	Repos              []string   `gorm:"serializer:json" json:"repos"`
	GithubOrgVerified  bool       `gorm:"not null;default:false" json:"githubOrgVerified"`
	VerificationMethod *string    `gorm:"type:varchar(16)" json:"verificationMethod,omitempty"`
	VerificationToken  *string    `json:"verificationToken,omitempty"`
	LastVerifiedAt     *time.Time `json:"lastVerifiedAt,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
