package handlers

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openreward-profile-service/models"
)

func fundProvider(t *testing.T, env *testEnv, wallet string, amount float64) {
	t.Helper()
	env.request(t, "POST", "/api/addBountyProvider", providerBody(wallet, wallet+"@b.c"), nil)
	require.NoError(t, env.db.Model(&models.BountyProvider{}).
		Where("wallet_address = ?", wallet).
		Update("available_balance", amount).Error)
}

func listingBody(contract string, amount float64) map[string]interface{} {
	return map[string]interface{}{
		"contractAddress": contract,
		"bountyAmount":    amount,
		"timeInterval":    3600,
		"issueURL":        "https://github.com/acme/repo/issues/1",
		"title":           "Fix the overflow",
		"expiresAt":       time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
	}
}

func TestCreateBountyRoute(t *testing.T) {
	env := newTestApp(t, &fakeVerifier{admin: true})
	headers := map[string]string{"X-Wallet-Address": "0xprov"}
	fundProvider(t, env, "0xprov", 100)

	// Secured: no wallet context, no listing.
	resp, _ := env.request(t, "POST", "/api/bounties", listingBody("0xb", 40), nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Provider wallet comes from the gateway headers.
	resp, body := env.request(t, "POST", "/api/bounties", listingBody("0xb", 40), headers)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	bounty := body["bounty"].(map[string]interface{})
	assert.Equal(t, "0xprov", bounty["bountyProvider"])
	assert.Equal(t, models.BountyStatusOpen, bounty["status"])

	// Duplicate contract address is a conflict.
	resp, _ = env.request(t, "POST", "/api/bounties", listingBody("0xb", 40), headers)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Over-listing beyond the available balance is a conflict too.
	resp, _ = env.request(t, "POST", "/api/bounties", listingBody("0xb2", 500), headers)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestBountyListingRoutes(t *testing.T) {
	env := newTestApp(t, &fakeVerifier{admin: true})
	headers := map[string]string{"X-Wallet-Address": "0xprov"}
	fundProvider(t, env, "0xprov", 100)
	env.request(t, "POST", "/api/bounties", listingBody("0xb", 40), headers)

	resp, body := env.request(t, "GET", "/api/bounties", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["bounties"], 1)

	resp, body = env.request(t, "GET", "/api/bounties/0xb", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "0xb", body["contractAddress"])

	resp, _ = env.request(t, "GET", "/api/bounties/0xmissing", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestJoinAndCompleteBountyRoutes(t *testing.T) {
	env := newTestApp(t, &fakeVerifier{admin: true})
	provHeaders := map[string]string{"X-Wallet-Address": "0xprov"}
	huntHeaders := map[string]string{"X-Wallet-Address": "0xhunt"}

	fundProvider(t, env, "0xprov", 100)
	env.request(t, "POST", "/api/addBountyHunter", hunterBody("0xhunt", "h@b.c"), nil)
	env.request(t, "POST", "/api/bounties", listingBody("0xb", 40), provHeaders)

	resp, body := env.request(t, "POST", "/api/bounties/0xb/join", nil, huntHeaders)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	bounty := body["bounty"].(map[string]interface{})
	assert.Contains(t, bounty["bountyHunters"], "0xhunt")

	resp, body = env.request(t, "POST", "/api/bounties/0xb/complete",
		map[string]interface{}{"winnerWallet": "0xhunt"}, provHeaders)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	bounty = body["bounty"].(map[string]interface{})
	assert.Equal(t, models.BountyStatusCompleted, bounty["status"])
	assert.Equal(t, "0xhunt", bounty["bountyWinner"])

	// Joining a settled bounty is rejected.
	resp, _ = env.request(t, "POST", "/api/bounties/0xb/join", nil, huntHeaders)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
