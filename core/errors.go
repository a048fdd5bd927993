package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrProjectNotFound  = errors.New("project not found")
	ErrFileNotFound     = errors.New("file not found")
)

// QuotaExceededError is returned by the quota guard when an upload would
// push an employee past the fixed storage limit. It carries enough detail
// for a precise user-facing message.
type QuotaExceededError struct {
	Used      int64
	Limit     int64
	Attempted int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("storage limit exceeded: used %.2fMB of %.2fMB, attempted to add %.2fMB",
		mib(e.Used), mib(e.Limit), mib(e.Attempted))
}

func mib(bytes int64) float64 {
	return float64(bytes) / 1048576.0
}
