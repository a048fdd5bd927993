package handlers

import (
	"encoding/base64"
	"time"

	"gorm.io/gorm"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/infrastructure/communication"
	"tipl.com/officepanel/infrastructure/devops"
	"tipl.com/officepanel/infrastructure/filesystem"
	"tipl.com/officepanel/realtime"
)

// Env carries every collaborator a handler may need. It is constructed
// once in main and threaded through the closure handlers; nothing in this
// package reaches for globals or the wall clock directly.
type Env struct {
	DB       *gorm.DB
	Sessions *core.SessionTracker
	Quota    *core.QuotaGuard
	Hub      *realtime.Hub
	Blobs    filesystem.BlobStore
	Notifier *communication.Slack
	Auth     devops.AuthConfig

	// Now supplies the current instant for all session and day logic.
	Now func() time.Time
}

func NewEnv(db *gorm.DB, hub *realtime.Hub, blobs filesystem.BlobStore, notifier *communication.Slack, auth devops.AuthConfig) *Env {
	return &Env{
		DB:       db,
		Sessions: core.NewSessionTracker(db),
		Quota:    core.NewQuotaGuard(db),
		Hub:      hub,
		Blobs:    blobs,
		Notifier: notifier,
		Auth:     auth,
		Now:      time.Now,
	}
}

func (e *Env) TokenTTL() time.Duration {
	hours := e.Auth.TokenTTLHours
	if hours <= 0 {
		hours = 24 * 30
	}
	return time.Duration(hours) * time.Hour
}

func (e *Env) SigningSecret() []byte {
	secret, err := base64.StdEncoding.DecodeString(e.Auth.SigningSecret)
	if err != nil {
		return nil
	}
	return secret
}
