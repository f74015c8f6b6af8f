package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"openreward-profile-service/common"
	"openreward-profile-service/models"
)

func TestRegisterHunter_CreatesWithDefaults(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	hunter, created, err := svc.RegisterHunter(&HunterRegistration{
		WalletAddress: "0xabc",
		Email:         "hunter@example.com",
		Name:          "Alice",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, hunter.ID)
	assert.Equal(t, "0xabc", hunter.WalletAddress)
	assert.Equal(t, "hunter@example.com", hunter.Email)
	assert.Equal(t, "Alice", hunter.Name)
	assert.Nil(t, hunter.ProfilePicture)
	assert.Nil(t, hunter.Bio)
	assert.Nil(t, hunter.GithubProfile)
	assert.Empty(t, hunter.Skills)
	assert.Empty(t, hunter.ActiveBounties)
	assert.Zero(t, hunter.BountiesParticipatedIn)
	assert.Zero(t, hunter.BountiesWon)
	assert.Zero(t, hunter.TotalAmountWon)
	assert.False(t, hunter.JoinedDate.IsZero())

	var count int64
	require.NoError(t, svc.DB.Model(&models.BountyHunter{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterHunter_OptionalFields(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	hunter, created, err := svc.RegisterHunter(&HunterRegistration{
		WalletAddress: "0xabc",
		Email:         "hunter@example.com",
		Name:          "Alice",
		Bio:           strPtr("solidity auditor"),
		Skills:        []string{"solidity", "go"},
		GithubProfile: strPtr("https://github.com/alice"),
	})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, hunter.Bio)
	assert.Equal(t, "solidity auditor", *hunter.Bio)
	assert.Equal(t, []string{"solidity", "go"}, hunter.Skills)
}

func TestRegisterHunter_MissingFields(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	tests := []struct {
		name string
		req  *HunterRegistration
	}{
		{"missing wallet", &HunterRegistration{Email: "a@b.c", Name: "A"}},
		{"missing email", &HunterRegistration{WalletAddress: "0x1", Name: "A"}},
		{"missing name", &HunterRegistration{WalletAddress: "0x1", Email: "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.RegisterHunter(tt.req)
			assert.ErrorIs(t, err, common.ErrValidation)

			// Validation must reject before any store access.
			var count int64
			require.NoError(t, svc.DB.Model(&models.BountyHunter{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestRegisterHunter_RepeatIsIdempotent(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	first, created, err := svc.RegisterHunter(&HunterRegistration{
		WalletAddress: "0xabc",
		Email:         "hunter@example.com",
		Name:          "Alice",
	})
	require.NoError(t, err)
	require.True(t, created)

	// Same wallet, even with a different email, resolves to the original.
	second, created, err := svc.RegisterHunter(&HunterRegistration{
		WalletAddress: "0xabc",
		Email:         "other@example.com",
		Name:          "Alice Again",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Alice", second.Name)

	var count int64
	require.NoError(t, svc.DB.Model(&models.BountyHunter{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterProvider_CreatesWithDefaults(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	provider, err := svc.RegisterProvider(&ProviderRegistration{
		WalletAddress: "0xdef",
		Email:         "provider@example.com",
		Name:          "Acme",
		CompanyName:   strPtr("Acme Corp"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, provider.ID)
	require.NotNil(t, provider.OrganizationName)
	assert.Equal(t, "Acme Corp", *provider.OrganizationName)
	assert.Zero(t, provider.BountiesListed)
	assert.Zero(t, provider.BountiesDistributed)
	assert.Zero(t, provider.TotalAmountDistributed)
	assert.Zero(t, provider.AvailableBalance)
	assert.Zero(t, provider.LockedBalance)
	assert.Empty(t, provider.ActiveBounties)
	assert.Empty(t, provider.CompletedBounties)
	assert.False(t, provider.GithubOrgVerified)
}

func TestRegisterProvider_MissingFields(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	_, err := svc.RegisterProvider(&ProviderRegistration{Email: "a@b.c", Name: "A"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRegisterProvider_RepeatIsConflict(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	_, err := svc.RegisterProvider(&ProviderRegistration{
		WalletAddress: "0xdef",
		Email:         "provider@example.com",
		Name:          "Acme",
	})
	require.NoError(t, err)

	// Same email, different wallet: still a conflict for providers.
	_, err = svc.RegisterProvider(&ProviderRegistration{
		WalletAddress: "0xother",
		Email:         "provider@example.com",
		Name:          "Acme",
	})
	assert.ErrorIs(t, err, common.ErrConflict)

	var count int64
	require.NoError(t, svc.DB.Model(&models.BountyProvider{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegister_SameIdentityMayHoldBothRoles(t *testing.T) {
	svc := NewRegistrationService(newTestDB(t))

	_, created, err := svc.RegisterHunter(&HunterRegistration{
		WalletAddress: "0xboth",
		Email:         "both@example.com",
		Name:          "Both",
	})
	require.NoError(t, err)
	require.True(t, created)

	// The same wallet and email register fine in the provider table.
	_, err = svc.RegisterProvider(&ProviderRegistration{
		WalletAddress: "0xboth",
		Email:         "both@example.com",
		Name:          "Both",
	})
	require.NoError(t, err)
}

// raceRivalOnCreate inserts rival through a second connection the moment the
// service issues its own INSERT, landing the row after the duplicate
// pre-check has already come back empty. That forces registration down the
// gorm.ErrDuplicatedKey path instead of the pre-check path.
func raceRivalOnCreate(t *testing.T, db, rivalConn *gorm.DB, rival interface{}) {
	t.Helper()

	fired := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").
		Register("race_rival_insert", func(*gorm.DB) {
			if fired {
				return
			}
			fired = true
			require.NoError(t, rivalConn.Create(rival).Error)
		}))
}

func TestRegisterHunter_InsertRaceReturnsExistingRow(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db := openTestDB(t, dsn)
	rivalConn := openTestDB(t, dsn)

	rival := &models.BountyHunter{
		ID:             uuid.NewString(),
		WalletAddress:  "0xrace",
		Email:          "race@example.com",
		Name:           "First In",
		Skills:         []string{},
		ActiveBounties: []string{},
	}
	raceRivalOnCreate(t, db, rivalConn, rival)

	svc := NewRegistrationService(db)
	hunter, created, err := svc.RegisterHunter(&HunterRegistration{
		WalletAddress: "0xrace",
		Email:         "race@example.com",
		Name:          "Second In",
	})
	require.NoError(t, err)

	// Losing the race is not an error: the winner's row comes back.
	assert.False(t, created)
	assert.Equal(t, rival.ID, hunter.ID)
	assert.Equal(t, "First In", hunter.Name)

	var count int64
	require.NoError(t, db.Model(&models.BountyHunter{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterProvider_InsertRaceIsConflict(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db := openTestDB(t, dsn)
	rivalConn := openTestDB(t, dsn)

	rival := &models.BountyProvider{
		ID:                uuid.NewString(),
		WalletAddress:     "0xrace",
		Email:             "race@example.com",
		Name:              "First In",
		ActiveBounties:    []string{},
		CompletedBounties: []string{},
		Repos:             []string{},
	}
	raceRivalOnCreate(t, db, rivalConn, rival)

	svc := NewRegistrationService(db)
	_, err := svc.RegisterProvider(&ProviderRegistration{
		WalletAddress: "0xrace",
		Email:         "race@example.com",
		Name:          "Second In",
	})
	assert.ErrorIs(t, err, common.ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.BountyProvider{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
