package testing

import (
	stdtesting "testing"

	"gorm.io/gorm"

	"github.com/vsinha/gestionale/pkg/infrastructure/database"
)

// NewTestDB creates a migrated in-memory SQLite database closed at test cleanup
func NewTestDB(t *stdtesting.T) *gorm.DB {
	db, err := database.NewTestConnection()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		database.Close(db)
	})

	return db
}
