package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tipl.com/officepanel/utils"
)

// SessionTracker owns the working-day records. All timestamps are taken
// from the caller so day boundaries stay deterministic under test.
type SessionTracker struct {
	db    *gorm.DB
	locks *employeeLocks
}

func NewSessionTracker(db *gorm.DB) *SessionTracker {
	return &SessionTracker{db: db, locks: newEmployeeLocks()}
}

// SignIn opens a working-day session for the day `now` falls on. If the
// employee already has an open session for that day it is returned
// unchanged, so repeated sign-ins within a day never create duplicates.
func (t *SessionTracker) SignIn(ctx context.Context, employeeID uint, now time.Time) (*WorkingDay, error) {
	unlock := t.locks.Lock(employeeID)
	defer unlock()

	day := utils.DayKey(now)

	open, err := t.openSession(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	session := &WorkingDay{
		EmployeeID: employeeID,
		Date:       day,
		LoginTime:  now,
	}
	if err := t.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create working day: %w", err)
	}
	return session, nil
}

// SignOut closes the employee's open session for the day `now` falls on.
// Returns (nil, nil) when there is nothing to close; a logout must never
// fail the surrounding request just because no session is open. An open
// session left over from a previous day is deliberately not touched.
func (t *SessionTracker) SignOut(ctx context.Context, employeeID uint, now time.Time) (*WorkingDay, error) {
	unlock := t.locks.Lock(employeeID)
	defer unlock()

	day := utils.DayKey(now)

	open, err := t.openSession(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, nil
	}

	open.LogoutTime = &now
	if err := t.db.WithContext(ctx).Model(open).Update("logout_time", now).Error; err != nil {
		return nil, fmt.Errorf("failed to close working day: %w", err)
	}
	return open, nil
}

// TotalWorkingDays counts distinct day keys across all of the employee's
// sessions. Multiple login/logout cycles within a day count once.
func (t *SessionTracker) TotalWorkingDays(ctx context.Context, employeeID uint) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&WorkingDay{}).
		Where("employee_id = ?", employeeID).
		Distinct("date").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count working days: %w", err)
	}
	return count, nil
}

// CurrentSession returns the open session for the day `now` falls on, or
// nil when the employee is not signed in today.
func (t *SessionTracker) CurrentSession(ctx context.Context, employeeID uint, now time.Time) (*WorkingDay, error) {
	return t.openSession(ctx, employeeID, utils.DayKey(now))
}

// History returns all sessions for the employee, newest day first.
func (t *SessionTracker) History(ctx context.Context, employeeID uint) ([]WorkingDay, error) {
	var days []WorkingDay
	err := t.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("date DESC, login_time DESC").
		Find(&days).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load working days: %w", err)
	}
	return days, nil
}

func (t *SessionTracker) openSession(ctx context.Context, employeeID uint, day string) (*WorkingDay, error) {
	var session WorkingDay
	err := t.db.WithContext(ctx).
		Where("employee_id = ? AND date = ? AND logout_time IS NULL", employeeID, day).
		Order("login_time DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	return &session, nil
}
