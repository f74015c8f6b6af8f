package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"openreward-profile-service/common"
	"openreward-profile-service/models"
)

type RoleService struct {
	DB *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{DB: db}
}

// RoleResolution reports which profiles exist for an email. Both flags may
// be true at once: the hunter and provider tables are independently unique,
// so the same identity can legitimately hold one row in each.
type RoleResolution struct {
	IsHunter   bool                   `json:"isHunter"`
	IsProvider bool                   `json:"isProvider"`
	Hunter     *models.BountyHunter   `json:"hunter"`
	Provider   *models.BountyProvider `json:"provider"`
}

// Resolve looks up both profile tables by email. Read-only.
func (s *RoleService) Resolve(email string) (*RoleResolution, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email parameter is required", common.ErrValidation)
	}

	res := &RoleResolution{}

	var hunter models.BountyHunter
	err := s.DB.Where("email = ?", email).First(&hunter).Error
	switch {
	case err == nil:
		res.IsHunter = true
		res.Hunter = &hunter
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	var provider models.BountyProvider
	err = s.DB.Where("email = ?", email).First(&provider).Error
	switch {
	case err == nil:
		res.IsProvider = true
		res.Provider = &provider
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	return res, nil
}
