package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"openreward-profile-service/common"
	"openreward-profile-service/models"
)

// OrgVerifier is the external "does the caller administer organization X"
// capability. The production implementation is GithubClient.
type OrgVerifier interface {
	CanAdminister(ctx context.Context, orgName, token string) (bool, error)
}

type VerificationService struct {
	DB       *gorm.DB
	Verifier OrgVerifier
}

func NewVerificationService(db *gorm.DB, verifier OrgVerifier) *VerificationService {
	return &VerificationService{DB: db, Verifier: verifier}
}

// VerifyOrganization checks that the provider behind walletAddress
// administers the named GitHub organization and records the outcome on the
// provider row. Last write wins; there is no retry.
func (s *VerificationService) VerifyOrganization(ctx context.Context, walletAddress, orgName, method, token string) (*models.BountyProvider, error) {
	if walletAddress == "" || orgName == "" {
		return nil, fmt.Errorf("%w: walletAddress and orgName are required", common.ErrValidation)
	}
	if method != models.VerificationMethodToken && method != models.VerificationMethodBranch {
		return nil, fmt.Errorf("%w: method must be %q or %q", common.ErrValidation,
			models.VerificationMethodToken, models.VerificationMethodBranch)
	}

	var provider models.BountyProvider
	if err := s.DB.Where("wallet_address = ?", walletAddress).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no bounty provider for wallet %s", common.ErrVerification, walletAddress)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	isAdmin, err := s.Verifier.CanAdminister(ctx, orgName, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerification, err)
	}
	if !isAdmin {
		return nil, fmt.Errorf("%w: %s is not an admin of %s", common.ErrNotOrgAdmin, walletAddress, orgName)
	}

	now := time.Now().UTC()
	provider.GithubOrgVerified = true
	provider.OrganizationGithub = &orgName
	provider.VerificationMethod = &method
	provider.LastVerifiedAt = &now
	if method == models.VerificationMethodBranch {
		challenge := ChallengeBranchName(orgName)
		provider.VerificationToken = &challenge
	}

	if err := s.DB.Save(&provider).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	return &provider, nil
}

// ChallengeBranchName builds the branch name a provider must push to prove
// control of the organization under the branch verification method, e.g.
// "openreward-verify-acme-corp-1b9d6bcd".
func ChallengeBranchName(orgName string) string {
	nonce := strings.Split(uuid.NewString(), "-")[0]
	return "openreward-verify-" + slug.Make(orgName) + "-" + nonce
}
