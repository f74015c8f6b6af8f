package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"openreward-profile-service/models"
)

// newTestDB opens a uniquely named shared in-memory SQLite database so each
// test gets an isolated store with working unique indexes.
func newTestDB(t *testing.T) *gorm.DB {
	return openTestDB(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}

// openTestDB opens a connection to the given shared-cache DSN. Tests that
// need two independent connections to the same store call this twice.
func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.BountyHunter{},
		&models.BountyProvider{},
		&models.Bounty{},
	))

	return db
}

func strPtr(s string) *string {
	return &s
}
