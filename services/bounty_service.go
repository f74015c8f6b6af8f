package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"openreward-profile-service/common"
	"openreward-profile-service/models"
)

type BountyService struct {
	DB *gorm.DB
}

func NewBountyService(db *gorm.DB) *BountyService {
	return &BountyService{DB: db}
}

// BountyListing is the request body for POST /api/bounties.
type BountyListing struct {
	ContractAddress string    `json:"contractAddress"`
	ProviderWallet  string    `json:"providerWallet"`
	BountyAmount    float64   `json:"bountyAmount"`
	TimeInterval    int64     `json:"timeInterval"`
	IssueURL        string    `json:"issueURL"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// List returns bounties, optionally filtered by status.
func (s *BountyService) List(status string) ([]models.Bounty, error) {
	var bounties []models.Bounty
	db := s.DB.Order("created_at DESC")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Find(&bounties).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return bounties, nil
}

func (s *BountyService) GetByContract(contractAddress string) (*models.Bounty, error) {
	var bounty models.Bounty
	if err := s.DB.Where("contract_address = ?", contractAddress).First(&bounty).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bounty %s", common.ErrNotFound, contractAddress)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return &bounty, nil
}

// CreateBounty lists a new bounty for a provider. The bounty amount moves
// from the provider's available balance to the locked balance in the same
// transaction that inserts the bounty row.
func (s *BountyService) CreateBounty(req *BountyListing) (*models.Bounty, error) {
	if req.ContractAddress == "" || req.ProviderWallet == "" || req.Title == "" || req.IssueURL == "" {
		return nil, fmt.Errorf("%w: contractAddress, providerWallet, title and issueURL are required", common.ErrValidation)
	}
	if req.BountyAmount <= 0 {
		return nil, fmt.Errorf("%w: bountyAmount must be positive", common.ErrValidation)
	}
	if req.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: expiresAt is required", common.ErrValidation)
	}

	now := time.Now().UTC()
	bounty := &models.Bounty{
		ID:               uuid.NewString(),
		ContractAddress:  req.ContractAddress,
		BountyProvider:   req.ProviderWallet,
		BountyAmount:     req.BountyAmount,
		TimeInterval:     req.TimeInterval,
		InitialTimestamp: now.Unix(),
		Status:           models.BountyStatusOpen,
		BountyHunters:    []string{},
		IssueURL:         req.IssueURL,
		Title:            req.Title,
		Description:      req.Description,
		ExpiresAt:        req.ExpiresAt,
		LastSyncedAt:     now,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var provider models.BountyProvider
		if err := tx.Where("wallet_address = ?", req.ProviderWallet).First(&provider).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no bounty provider for wallet %s", common.ErrNotFound, req.ProviderWallet)
			}
			return err
		}

		if provider.AvailableBalance < req.BountyAmount {
			return fmt.Errorf("%w: need %.2f, have %.2f", common.ErrInsufficientBalance,
				req.BountyAmount, provider.AvailableBalance)
		}

		if err := tx.Create(bounty).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: a bounty with contract address %s already exists", common.ErrConflict, req.ContractAddress)
			}
			return err
		}

		provider.BountiesListed++
		provider.AvailableBalance -= req.BountyAmount
		provider.LockedBalance += req.BountyAmount
		provider.ActiveBounties = appendUnique(provider.ActiveBounties, req.ContractAddress)

		return tx.Save(&provider).Error
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	return bounty, nil
}

// JoinBounty adds a hunter to an open bounty. Joining twice is a no-op.
func (s *BountyService) JoinBounty(contractAddress, hunterWallet string) (*models.Bounty, error) {
	if contractAddress == "" || hunterWallet == "" {
		return nil, fmt.Errorf("%w: contractAddress and hunterWallet are required", common.ErrValidation)
	}

	var bounty models.Bounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_address = ?", contractAddress).First(&bounty).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bounty %s", common.ErrNotFound, contractAddress)
			}
			return err
		}
		if bounty.Status != models.BountyStatusOpen {
			return fmt.Errorf("%w: bounty %s is %s", common.ErrConflict, contractAddress, bounty.Status)
		}
		if contains(bounty.BountyHunters, hunterWallet) {
			return nil
		}

		var hunter models.BountyHunter
		if err := tx.Where("wallet_address = ?", hunterWallet).First(&hunter).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no bounty hunter for wallet %s", common.ErrNotFound, hunterWallet)
			}
			return err
		}

		bounty.BountyHunters = append(bounty.BountyHunters, hunterWallet)
		if err := tx.Save(&bounty).Error; err != nil {
			return err
		}

		hunter.BountiesParticipatedIn++
		hunter.ActiveBounties = appendUnique(hunter.ActiveBounties, contractAddress)
		return tx.Save(&hunter).Error
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	return &bounty, nil
}

// CompleteBounty settles an open bounty: the winner's hunter counters and
// the provider's distribution counters move together with the locked funds,
// all in one transaction.
func (s *BountyService) CompleteBounty(contractAddress, winnerWallet string) (*models.Bounty, error) {
	if contractAddress == "" || winnerWallet == "" {
		return nil, fmt.Errorf("%w: contractAddress and winnerWallet are required", common.ErrValidation)
	}

	var bounty models.Bounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_address = ?", contractAddress).First(&bounty).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bounty %s", common.ErrNotFound, contractAddress)
			}
			return err
		}
		if bounty.Status != models.BountyStatusOpen {
			return fmt.Errorf("%w: bounty %s is %s", common.ErrConflict, contractAddress, bounty.Status)
		}

		var provider models.BountyProvider
		if err := tx.Where("wallet_address = ?", bounty.BountyProvider).First(&provider).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no bounty provider for wallet %s", common.ErrNotFound, bounty.BountyProvider)
			}
			return err
		}

		var winner models.BountyHunter
		if err := tx.Where("wallet_address = ?", winnerWallet).First(&winner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no bounty hunter for wallet %s", common.ErrNotFound, winnerWallet)
			}
			return err
		}

		bounty.Status = models.BountyStatusCompleted
		bounty.BountyWinner = &winner.WalletAddress
		if err := tx.Save(&bounty).Error; err != nil {
			return err
		}

		provider.BountiesDistributed++
		provider.TotalAmountDistributed += bounty.BountyAmount
		provider.LockedBalance -= bounty.BountyAmount
		if provider.LockedBalance < 0 {
			provider.LockedBalance = 0
		}
		provider.ActiveBounties = remove(provider.ActiveBounties, contractAddress)
		provider.CompletedBounties = appendUnique(provider.CompletedBounties, contractAddress)
		if err := tx.Save(&provider).Error; err != nil {
			return err
		}

		winner.BountiesWon++
		winner.TotalAmountWon += bounty.BountyAmount
		winner.ActiveBounties = remove(winner.ActiveBounties, contractAddress)
		return tx.Save(&winner).Error
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}

	return &bounty, nil
}

// ExpireOverdue closes open bounties whose deadline has passed and returns
// the locked amounts to their providers. Returns the number closed.
func (s *BountyService) ExpireOverdue(now time.Time) (int, error) {
	var overdue []models.Bounty
	if err := s.DB.Where("status = ? AND expires_at <= ?", models.BountyStatusOpen, now).
		Find(&overdue).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	closed := 0
	for _, bounty := range overdue {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			bounty.Status = models.BountyStatusClosed
			if err := tx.Save(&bounty).Error; err != nil {
				return err
			}

			var provider models.BountyProvider
			if err := tx.Where("wallet_address = ?", bounty.BountyProvider).First(&provider).Error; err != nil {
				// Provider row gone; still close the bounty.
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}

			provider.LockedBalance -= bounty.BountyAmount
			if provider.LockedBalance < 0 {
				provider.LockedBalance = 0
			}
			provider.AvailableBalance += bounty.BountyAmount
			provider.ActiveBounties = remove(provider.ActiveBounties, bounty.ContractAddress)
			return tx.Save(&provider).Error
		})
		if err != nil {
			log.Printf("[Expiry] Failed to close bounty %s: %v", bounty.ContractAddress, err)
			continue
		}
		closed++
	}

	return closed, nil
}

func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrConflict) ||
		errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrInsufficientBalance) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrPersistence, err)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}

func remove(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
