package farcaster

import (
	"context"
	"fmt"
	"time"

	"github.com/crosspostx/backend/internal/models"
	"github.com/crosspostx/backend/internal/repositories"
	"github.com/crosspostx/backend/pkg/logger"
)

// PublishFunc is the signer capability: it publishes cast text and
// returns the cast hash. It is supplied per call because a valid
// signer may only exist inside an authenticated session.
type PublishFunc func(ctx context.Context, text string) (string, error)

// CrosspostResult summarizes one processing pass over the pending queue
type CrosspostResult struct {
	Processed  int      `json:"processed"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

// CrosspostService publishes pending crosspost logs to Farcaster.
type CrosspostService struct {
	logs repositories.CrosspostLogRepository
}

// NewCrosspostService creates a new CrosspostService
func NewCrosspostService(logs repositories.CrosspostLogRepository) *CrosspostService {
	return &CrosspostService{logs: logs}
}

// ProcessPending formats and publishes every pending crosspost,
// sequentially, moving each row to completed or failed. A failed row
// is terminal; it is not retried on later passes. A failure to list
// the pending rows aborts the pass without touching any row.
func (s *CrosspostService) ProcessPending(ctx context.Context, publish PublishFunc) *CrosspostResult {
	result := &CrosspostResult{Errors: []string{}}

	if publish == nil {
		result.Errors = append(result.Errors, "no publish capability provided")
		return result
	}

	pending, err := s.logs.ListPending(ctx)
	if err != nil {
		msg := fmt.Sprintf("failed to get pending crossposts: %v", err)
		logger.Log.Errorw("crosspost processing aborted", "error", err)
		result.Errors = append(result.Errors, msg)
		return result
	}

	logger.Log.Infow("processing pending crossposts", "count", len(pending))

	for i := range pending {
		s.processOne(ctx, &pending[i], publish, result)
		result.Processed++
	}

	logger.Log.Infow("crosspost processing completed",
		"processed", result.Processed,
		"successful", result.Successful,
		"failed", result.Failed)
	return result
}

func (s *CrosspostService) processOne(ctx context.Context, crosspost *models.CrosspostLog, publish PublishFunc, result *CrosspostResult) {
	castText := FormatCast(crosspost.TweetText, crosspost.TweetURL)

	hash, err := publish(ctx, castText)
	now := time.Now().UTC()
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("tweet %s: %v", crosspost.TweetID, err))
		logger.Log.Errorw("crosspost failed", "tweet_id", crosspost.TweetID, "error", err)

		if markErr := s.logs.MarkFailed(ctx, crosspost.ID, err.Error(), now); markErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("tweet %s: record failure: %v", crosspost.TweetID, markErr))
		}
		return
	}

	if err := s.logs.MarkCompleted(ctx, crosspost.ID, hash, now); err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("tweet %s: record success: %v", crosspost.TweetID, err))
		logger.Log.Errorw("failed to record crosspost success", "tweet_id", crosspost.TweetID, "error", err)

		// the cast is already published; the row must still reach a
		// terminal state or the next pass would publish it again
		if markErr := s.logs.MarkFailed(ctx, crosspost.ID, "record success: "+err.Error(), now); markErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("tweet %s: record failure: %v", crosspost.TweetID, markErr))
		}
		return
	}

	result.Successful++
	logger.Log.Infow("crossposted tweet", "tweet_id", crosspost.TweetID, "cast_hash", hash)
}
