// Package handlers wires the REST surface: auth, projects, uploads, charts,
// invitations, and the dashboard. Handlers decode requests, delegate to the
// core packages, and shape success/failure envelopes.
package handlers

import (
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gourab8389/excel-analytics-server/internal/auth"
	"github.com/gourab8389/excel-analytics-server/internal/bus"
	"github.com/gourab8389/excel-analytics-server/internal/config"
	"github.com/gourab8389/excel-analytics-server/internal/invite"
)

// API wires dependencies and configuration for the HTTP handlers.
type API struct {
	db      *gorm.DB
	cfg     config.Config
	tokens  *auth.Tokens
	invites *invite.Service
	bus     *bus.Bus
	log     zerolog.Logger
}

// New initialises the API layer. The event bus may be nil; publishes become
// no-ops.
func New(database *gorm.DB, cfg config.Config, tokens *auth.Tokens, invites *invite.Service, eventBus *bus.Bus, log zerolog.Logger) (*API, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	if invites == nil {
		return nil, errors.New("invitation service is required")
	}

	return &API{
		db:      database,
		cfg:     cfg,
		tokens:  tokens,
		invites: invites,
		bus:     eventBus,
		log:     log,
	}, nil
}
