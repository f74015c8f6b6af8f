// workers/balance_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"

	"openreward-profile-service/models"
	"openreward-profile-service/utils"
)

// BalanceUpdate is one provider balance record as reported by the indexer
// after it resolves on-chain funds through the RPC endpoint.
type BalanceUpdate struct {
	WalletAddress    string    `json:"wallet_address"`
	AvailableBalance float64   `json:"available_balance"`
	LockedBalance    float64   `json:"locked_balance"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BalanceSyncClient pulls provider balance changes from the indexer and
// writes them onto matching provider rows. Providers without a profile row
// are skipped; the worker never creates profiles.
type BalanceSyncClient struct {
	BaseURL      string
	EndpointPath string
	Token        string
	HTTPClient   *http.Client
	DB           *gorm.DB
}

func NewBalanceSyncClient(db *gorm.DB, indexerBaseURL, endpointPath, serviceToken string) *BalanceSyncClient {
	return &BalanceSyncClient{
		BaseURL:      indexerBaseURL,
		EndpointPath: endpointPath,
		Token:        serviceToken,
		DB:           db,
		HTTPClient:   utils.HTTPClient,
	}
}

func (c *BalanceSyncClient) GetChangedBalances(ctx context.Context, since time.Time) ([]BalanceUpdate, error) {
	since = since.UTC()

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse indexer URL: %w", err)
	}
	u := base.JoinPath(c.EndpointPath)

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call indexer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("indexer returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Balances []BalanceUpdate `json:"balances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode indexer response: %w", err)
	}

	return response.Balances, nil
}

// ApplyUpdates writes balance changes onto matching provider rows and
// reports how many landed and how many failed. Unknown wallets are not an
// error; the worker never creates provider rows.
func (c *BalanceSyncClient) ApplyUpdates(updates []BalanceUpdate) (applied, failed int) {
	for _, u := range updates {
		res := c.DB.Model(&models.BountyProvider{}).
			Where("wallet_address = ?", u.WalletAddress).
			Updates(map[string]interface{}{
				"available_balance": u.AvailableBalance,
				"locked_balance":    u.LockedBalance,
			})
		if res.Error != nil {
			failed++
			log.Printf("❌ Failed to apply balance for %s: %v", u.WalletAddress, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			applied++
		}
	}
	return applied, failed
}

// PollBalances applies balance changes to provider rows on each tick.
func PollBalances(ctx context.Context, client *BalanceSyncClient, pollInterval time.Duration) {
	log.Println("Starting provider balance polling…")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Balance polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()

			updates, err := client.GetChangedBalances(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling balances: %v", err)
				continue
			}

			if len(updates) == 0 {
				continue
			}

			applied, failed := client.ApplyUpdates(updates)
			if failed > 0 {
				// Retry the same window next tick so nothing is dropped.
				continue
			}

			lastSyncTime = tickTime
			log.Printf("✅ Applied %d balance update(s) to providers.", applied)
		}
	}
}
