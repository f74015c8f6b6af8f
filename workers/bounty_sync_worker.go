// workers/bounty_sync_worker.go
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

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"openreward-profile-service/models"
	"openreward-profile-service/services"
)

// RemoteBounty matches the JSON the chain indexer reports per contract.
type RemoteBounty struct {
	ContractAddress  string    `json:"contract_address"`
	BountyProvider   string    `json:"bounty_provider"`
	BountyAmount     float64   `json:"bounty_amount"`
	TimeInterval     int64     `json:"time_interval"`
	InitialTimestamp int64     `json:"initial_timestamp"`
	Status           string    `json:"status"`
	BountyHunters    []string  `json:"bounty_hunters"`
	BountyWinner     *string   `json:"bounty_winner,omitempty"`
	IssueURL         string    `json:"issue_url"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GetBountyChangesResponse is the top-level structure of the indexer response.
type GetBountyChangesResponse struct {
	Bounties []RemoteBounty `json:"bounties"`
}

// BountySyncWorker keeps the local bounty mirror current with on-chain
// contract state. Completions reported by the indexer settle through the
// bounty service so profile counters and balances move with them.
type BountySyncWorker struct {
	db            *gorm.DB
	bountyService *services.BountyService
	interval      time.Duration
	baseURL       string // e.g., "http://localhost:8600"
	endpointPath  string // e.g., "/api/v1/public/bounties"
	serviceToken  string
	httpClient    *http.Client
}

func NewBountySyncWorker(db *gorm.DB, bountyService *services.BountyService, indexerBaseURL, endpointPath, serviceToken string) *BountySyncWorker {
	return &BountySyncWorker{
		db:            db,
		bountyService: bountyService,
		interval:      1 * time.Minute,
		baseURL:       indexerBaseURL,
		endpointPath:  endpointPath,
		serviceToken:  serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *BountySyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Bounty Sync Worker (indexer → bounties)…")
	go w.run(ctx)
}

func (w *BountySyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial bounty sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Bounty sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Bounty Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent LastSyncedAt from the local mirror.
func (w *BountySyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(last_synced_at) FROM bounties").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch pulls contract changes from the indexer and reconciles the
// local mirror. Contracts the indexer reports as COMPLETED while our row
// is still OPEN settle through the lifecycle service; everything else is
// a plain upsert on contract_address.
func (w *BountySyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid indexer URL '%s': %w", w.baseURL, err)
	}

	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to indexer failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("indexer non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetBountyChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode indexer response: %w", err)
	}

	if len(response.Bounties) == 0 {
		return nil
	}

	log.Printf("[BOUNTY_SYNC] 📥 Processing %d bounty change(s) from indexer…", len(response.Bounties))

	now := time.Now().UTC()
	var upsertCount, settledCount, errorCount int
	for _, remote := range response.Bounties {
		if remote.Status == models.BountyStatusCompleted && remote.BountyWinner != nil {
			var local models.Bounty
			err := w.db.Where("contract_address = ?", remote.ContractAddress).First(&local).Error
			if err == nil && local.Status == models.BountyStatusOpen {
				if _, err := w.bountyService.CompleteBounty(remote.ContractAddress, *remote.BountyWinner); err != nil {
					errorCount++
					log.Printf("[BOUNTY_SYNC] ⚠️ Failed to settle completed bounty %s: %v", remote.ContractAddress, err)
				} else {
					settledCount++
				}
				continue
			}
		}

		local := models.Bounty{
			ContractAddress:  remote.ContractAddress,
			BountyProvider:   remote.BountyProvider,
			BountyAmount:     remote.BountyAmount,
			TimeInterval:     remote.TimeInterval,
			InitialTimestamp: remote.InitialTimestamp,
			Status:           remote.Status,
			BountyHunters:    remote.BountyHunters,
			BountyWinner:     remote.BountyWinner,
			IssueURL:         remote.IssueURL,
			Title:            remote.Title,
			Description:      remote.Description,
			ExpiresAt:        remote.ExpiresAt,
			LastSyncedAt:     now,
		}
		local.ID = uuid.NewString()

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "contract_address"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"bounty_provider", "bounty_amount", "time_interval", "initial_timestamp",
				"status", "bounty_hunters", "bounty_winner", "expires_at", "last_synced_at",
			}),
		}).Create(&local).Error; err != nil {
			errorCount++
			log.Printf("[BOUNTY_SYNC] ⚠️ Failed to upsert bounty (contract=%q): %v", remote.ContractAddress, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[BOUNTY_SYNC] ✅ Synced %d bounty(ies) (%d upserted, %d settled, %d errors)",
		len(response.Bounties), upsertCount, settledCount, errorCount)
	return nil
}
