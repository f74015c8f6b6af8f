package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"openreward-profile-service/common"
	"openreward-profile-service/models"
)

type RegistrationService struct {
	DB *gorm.DB
}

func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{DB: db}
}

// HunterRegistration is the request body for POST /api/addBountyHunter.
type HunterRegistration struct {
	WalletAddress  string   `json:"walletAddress"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	ProfilePicture *string  `json:"profilePicture"`
	Bio            *string  `json:"bio"`
	Skills         []string `json:"skills"`
	GithubProfile  *string  `json:"githubProfile"`
}

// ProviderRegistration is the request body for POST /api/addBountyProvider.
type ProviderRegistration struct {
	WalletAddress  string  `json:"walletAddress"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	ProfilePicture *string `json:"profilePicture"`
	Bio            *string `json:"bio"`
	Website        *string `json:"website"`
	GithubProfile  *string `json:"githubProfile"`
	CompanyName    *string `json:"companyName"`
}

// RegisterHunter creates a hunter profile for a new identity. A wallet or
// email that already has a hunter profile is NOT an error: the existing
// record is returned with created=false. Registration is idempotent on the
// hunter side only — the provider side treats a repeat as a conflict.
func (s *RegistrationService) RegisterHunter(req *HunterRegistration) (*models.BountyHunter, bool, error) {
	if req.WalletAddress == "" || req.Email == "" || req.Name == "" {
		return nil, false, fmt.Errorf("%w: walletAddress, email and name are required", common.ErrValidation)
	}

	var existing models.BountyHunter
	err := s.DB.Where("wallet_address = ? OR email = ?", req.WalletAddress, req.Email).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	hunter := &models.BountyHunter{
		ID:             uuid.NewString(),
		WalletAddress:  req.WalletAddress,
		Email:          req.Email,
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
		Bio:            req.Bio,
		Skills:         emptyIfNil(req.Skills),
		GithubProfile:  req.GithubProfile,
		JoinedDate:     time.Now().UTC(),
		ActiveBounties: []string{},
	}

	if err := s.DB.Create(hunter).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost an insert race against a concurrent registration for the
			// same identity; whoever won is the profile we hand back.
			var winner models.BountyHunter
			if lookupErr := s.DB.Where("wallet_address = ? OR email = ?", req.WalletAddress, req.Email).
				First(&winner).Error; lookupErr == nil {
				return &winner, false, nil
			}
		}
		return nil, false, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	return hunter, true, nil
}

// RegisterProvider creates a provider profile. A wallet or email that
// already has a provider profile is a conflict, whether caught by the
// pre-check or by the unique index on a concurrent insert.
func (s *RegistrationService) RegisterProvider(req *ProviderRegistration) (*models.BountyProvider, error) {
	if req.WalletAddress == "" || req.Email == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: walletAddress, email and name are required", common.ErrValidation)
	}

	var existing models.BountyProvider
	err := s.DB.Where("wallet_address = ? OR email = ?", req.WalletAddress, req.Email).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: a bounty provider with this wallet address or email already exists", common.ErrConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	provider := &models.BountyProvider{
		ID:                uuid.NewString(),
		WalletAddress:     req.WalletAddress,
		Email:             req.Email,
		Name:              req.Name,
		ProfilePicture:    req.ProfilePicture,
		Bio:               req.Bio,
		Website:           req.Website,
		GithubProfile:     req.GithubProfile,
		OrganizationName:  req.CompanyName,
		ActiveBounties:    []string{},
		CompletedBounties: []string{},
		Repos:             []string{},
	}

	if err := s.DB.Create(provider).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: a bounty provider with this wallet address or email already exists", common.ErrConflict)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	return provider, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
