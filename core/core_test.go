package core

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

func createTestEmployee(t *testing.T, db *gorm.DB, username string) *Employee {
	t.Helper()

	emp := &Employee{
		FullName:     "Test Employee",
		OfficeEmail:  username + "@tipl.com",
		Designation:  "Engineer",
		Department:   DepartmentSoftware,
		StaffID:      "TIPL-" + username,
		Username:     username,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(emp).Error)
	return emp
}
