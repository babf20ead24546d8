package services

import (
	"context"

	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/services/alerting"
	"surveilens-control-plane/internal/services/enrichment"
	"surveilens-control-plane/internal/services/ingest"
	"surveilens-control-plane/internal/services/journal"
	"surveilens-control-plane/internal/services/messaging"
	"surveilens-control-plane/internal/services/notify"
	"surveilens-control-plane/internal/services/relay"
	"surveilens-control-plane/internal/services/transcribe"
	"surveilens-control-plane/internal/store"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config        *config.Config
	Store         *store.Store
	MessagingSvc  *messaging.Service
	JournalSvc    *journal.Service
	EnrichmentSvc *enrichment.Service
	NotifySvc     *notify.Service
	RelaySvc      *relay.Service
	AlertingSvc   *alerting.Service
	IngestSvc     *ingest.Service
	TranscribeSvc *transcribe.Service
}

// NewServiceContainer creates a new service container
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	st := store.New(cfg.AlertsCapacity)

	messagingSvc, err := messaging.NewService(cfg)
	if err != nil {
		return nil, err
	}

	journalSvc, err := journal.NewService(cfg, st)
	if err != nil {
		return nil, err
	}

	enrichmentSvc, err := enrichment.NewService(cfg, st)
	if err != nil {
		return nil, err
	}

	notifySvc, err := notify.NewService(cfg)
	if err != nil {
		return nil, err
	}

	relaySvc, err := relay.NewService(cfg, messagingSvc)
	if err != nil {
		return nil, err
	}

	alertingSvc, err := alerting.NewService(st, journalSvc, enrichmentSvc, notifySvc)
	if err != nil {
		return nil, err
	}

	ingestSvc, err := ingest.NewService(cfg, messagingSvc, alertingSvc)
	if err != nil {
		return nil, err
	}

	transcribeSvc, err := transcribe.NewService(cfg)
	if err != nil {
		return nil, err
	}

	return &ServiceContainer{
		Config:        cfg,
		Store:         st,
		MessagingSvc:  messagingSvc,
		JournalSvc:    journalSvc,
		EnrichmentSvc: enrichmentSvc,
		NotifySvc:     notifySvc,
		RelaySvc:      relaySvc,
		AlertingSvc:   alertingSvc,
		IngestSvc:     ingestSvc,
		TranscribeSvc: transcribeSvc,
	}, nil
}

// Start brings up the event consumers after construction
func (sc *ServiceContainer) Start() error {
	if err := sc.IngestSvc.Start(); err != nil {
		return err
	}

	sc.TranscribeSvc.Start()

	return nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.IngestSvc != nil {
		if err := sc.IngestSvc.Shutdown(ctx); err != nil {
			return err
		}
	}

	if sc.TranscribeSvc != nil {
		if err := sc.TranscribeSvc.Shutdown(ctx); err != nil {
			return err
		}
	}

	if sc.MessagingSvc != nil {
		return sc.MessagingSvc.Shutdown(ctx)
	}

	return nil
}
