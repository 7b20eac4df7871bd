package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dbService, err := NewSqliteDBService(":memory:")
	require.NoError(t, err, "Failed to connect to in-memory database")
	t.Cleanup(func() { dbService.Close() })

	db := dbService.GetDB()
	if testing.Verbose() {
		db = db.Debug()
	}
	return db
}
