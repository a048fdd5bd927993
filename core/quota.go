package core

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// StorageQuota is the fixed per-employee upload allowance: 50 MiB.
const StorageQuota int64 = 52428800

// QuotaGuard is the only writer of Employee.TotalStorageUsed. Handlers
// sequence Reserve -> store content -> Commit, and compensate by deleting
// the stored content if Commit is never reached.
type QuotaGuard struct {
	db    *gorm.DB
	limit int64
	locks *employeeLocks
}

func NewQuotaGuard(db *gorm.DB) *QuotaGuard {
	return &QuotaGuard{db: db, limit: StorageQuota, locks: newEmployeeLocks()}
}

func (g *QuotaGuard) Limit() int64 {
	return g.limit
}

// Reserve checks whether the employee can take incoming bytes. It never
// mutates state; a denial returns *QuotaExceededError with the figures
// needed for the user-facing message.
func (g *QuotaGuard) Reserve(ctx context.Context, employeeID uint, incoming int64) error {
	used, err := g.used(ctx, employeeID)
	if err != nil {
		return err
	}
	if used+incoming > g.limit {
		return &QuotaExceededError{Used: used, Limit: g.limit, Attempted: incoming}
	}
	return nil
}

// Commit adds bytes to the employee's counter after the content has been
// durably stored. The update is a single guarded statement, so a racing
// upload that would overrun the quota fails here instead of corrupting
// the counter; the caller then deletes the stored content.
func (g *QuotaGuard) Commit(ctx context.Context, employeeID uint, bytes int64) error {
	if bytes == 0 {
		return nil
	}

	unlock := g.locks.Lock(employeeID)
	defer unlock()

	result := g.db.WithContext(ctx).
		Model(&Employee{}).
		Where("employee_id = ? AND total_storage_used + ? <= ?", employeeID, bytes, g.limit).
		Update("total_storage_used", gorm.Expr("total_storage_used + ?", bytes))
	if result.Error != nil {
		return fmt.Errorf("failed to commit storage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		used, err := g.used(ctx, employeeID)
		if err != nil {
			return err
		}
		return &QuotaExceededError{Used: used, Limit: g.limit, Attempted: bytes}
	}
	return nil
}

// Release subtracts bytes from the counter, floored at zero. Used when a
// file is deleted.
func (g *QuotaGuard) Release(ctx context.Context, employeeID uint, bytes int64) error {
	unlock := g.locks.Lock(employeeID)
	defer unlock()

	err := g.db.WithContext(ctx).
		Model(&Employee{}).
		Where("employee_id = ?", employeeID).
		Update("total_storage_used", gorm.Expr(
			"CASE WHEN total_storage_used > ? THEN total_storage_used - ? ELSE 0 END", bytes, bytes)).Error
	if err != nil {
		return fmt.Errorf("failed to release storage: %w", err)
	}
	return nil
}

// Used reports the employee's current counter value.
func (g *QuotaGuard) Used(ctx context.Context, employeeID uint) (int64, error) {
	return g.used(ctx, employeeID)
}

func (g *QuotaGuard) used(ctx context.Context, employeeID uint) (int64, error) {
	var emp Employee
	err := g.db.WithContext(ctx).
		Select("total_storage_used").
		Where("employee_id = ?", employeeID).
		First(&emp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrEmployeeNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read storage counter: %w", err)
	}
	return emp.TotalStorageUsed, nil
}
