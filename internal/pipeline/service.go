package pipeline

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/farcaster"
	"github.com/crosspostx/backend/internal/twitter"
	"github.com/crosspostx/backend/pkg/logger"
)

// Monitor runs one monitoring pass over the active accounts
type Monitor interface {
	Run(ctx context.Context) *twitter.MonitoringResult
}

// Crossposter drains the pending crosspost queue with the given
// publish capability
type Crossposter interface {
	ProcessPending(ctx context.Context, publish farcaster.PublishFunc) *farcaster.CrosspostResult
}

// ProbeFunc checks one external dependency
type ProbeFunc func(ctx context.Context) error

// Status reports the outcome of one health probe
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health reports the three system dependencies independently
type Health struct {
	Twitter   Status `json:"twitter"`
	Farcaster Status `json:"farcaster"`
	Database  Status `json:"database"`
}

// Connected reports whether every dependency probe succeeded
func (h *Health) Connected() bool {
	return h.Twitter.Status == "connected" &&
		h.Farcaster.Status == "connected" &&
		h.Database.Status == "connected"
}

// Summary aggregates both pipeline stages
type Summary struct {
	TotalAccountsChecked int      `json:"total_accounts_checked"`
	NewTweetsFound       int      `json:"new_tweets_found"`
	SuccessfulCrossposts int      `json:"successful_crossposts"`
	FailedCrossposts     int      `json:"failed_crossposts"`
	Errors               []string `json:"errors"`
}

// Result is the outcome of one full pipeline run
type Result struct {
	Twitter   *twitter.MonitoringResult  `json:"twitter"`
	Farcaster *farcaster.CrosspostResult `json:"farcaster"`
	Summary   Summary                    `json:"summary"`
}

// Service composes the monitoring and crosspost stages into one
// sequential pipeline and exposes the system health check.
type Service struct {
	monitoring Monitor
	crosspost  Crossposter
	publish    farcaster.PublishFunc

	sourceProbe  ProbeFunc
	destProbe    ProbeFunc
	storageProbe ProbeFunc

	// overlapping pipeline triggers serialize here, so two runs cannot
	// race on the dedup pre-check
	mu sync.Mutex
}

// NewService creates a new pipeline Service
func NewService(monitoring Monitor, crosspost Crossposter, publish farcaster.PublishFunc, sourceProbe, destProbe, storageProbe ProbeFunc) *Service {
	return &Service{
		monitoring:   monitoring,
		crosspost:    crosspost,
		publish:      publish,
		sourceProbe:  sourceProbe,
		destProbe:    destProbe,
		storageProbe: storageProbe,
	}
}

// Run executes the two stages strictly in order. The crosspost stage
// always runs, even when monitoring reported errors, so previously
// queued rows still drain.
func (s *Service) Run(ctx context.Context) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Log.Infow("starting crosspost pipeline")

	twitterResult := s.monitoring.Run(ctx)
	farcasterResult := s.crosspost.ProcessPending(ctx, s.publish)

	errs := make([]string, 0, len(twitterResult.Errors)+len(farcasterResult.Errors))
	errs = append(errs, twitterResult.Errors...)
	errs = append(errs, farcasterResult.Errors...)

	result := &Result{
		Twitter:   twitterResult,
		Farcaster: farcasterResult,
		Summary: Summary{
			TotalAccountsChecked: twitterResult.AccountsChecked,
			NewTweetsFound:       twitterResult.NewTweetsFound,
			SuccessfulCrossposts: farcasterResult.Successful,
			FailedCrossposts:     farcasterResult.Failed,
			Errors:               errs,
		},
	}

	logger.Log.Infow("crosspost pipeline completed",
		"accounts_checked", result.Summary.TotalAccountsChecked,
		"new_tweets", result.Summary.NewTweetsFound,
		"successful", result.Summary.SuccessfulCrossposts,
		"failed", result.Summary.FailedCrossposts,
		"errors", len(result.Summary.Errors))
	return result
}

// CheckHealth probes the source platform, the destination platform and
// the datastore. Each probe is independent; one failing never masks
// the status of the other two.
func (s *Service) CheckHealth(ctx context.Context) *Health {
	return &Health{
		Twitter:   runProbe(ctx, s.sourceProbe),
		Farcaster: runProbe(ctx, s.destProbe),
		Database:  runProbe(ctx, s.storageProbe),
	}
}

func runProbe(ctx context.Context, probe ProbeFunc) Status {
	if probe == nil {
		return Status{Status: "error", Message: "not configured"}
	}
	if err := probe(ctx); err != nil {
		return Status{Status: "error", Message: err.Error()}
	}
	return Status{Status: "connected", Message: "connection successful"}
}

// StorageProbe builds a datastore probe from the gorm handle
func StorageProbe(db *gorm.DB) ProbeFunc {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
