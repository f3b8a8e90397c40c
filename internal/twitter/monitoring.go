package twitter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/models"
	"github.com/crosspostx/backend/internal/repositories"
	"github.com/crosspostx/backend/pkg/logger"
)

// tweets fetched per account per polling pass
const maxTweetsPerFetch = 10

// MonitoringResult summarizes one monitoring pass
type MonitoringResult struct {
	AccountsChecked int      `json:"accounts_checked"`
	NewTweetsFound  int      `json:"new_tweets_found"`
	Errors          []string `json:"errors"`
}

// MonitoringService polls active monitored accounts and queues new
// tweets for crossposting.
type MonitoringService struct {
	reader   Reader
	accounts repositories.AccountRepository
	logs     repositories.CrosspostLogRepository
}

// NewMonitoringService creates a new MonitoringService
func NewMonitoringService(reader Reader, accounts repositories.AccountRepository, logs repositories.CrosspostLogRepository) *MonitoringService {
	return &MonitoringService{reader: reader, accounts: accounts, logs: logs}
}

// Run checks every active account once, sequentially. A failure on one
// account is recorded and does not abort the others; a failure to list
// the accounts at all aborts the pass with a single error.
func (s *MonitoringService) Run(ctx context.Context) *MonitoringResult {
	result := &MonitoringResult{Errors: []string{}}

	accounts, err := s.accounts.ListActiveAccounts(ctx)
	if err != nil {
		msg := fmt.Sprintf("failed to get monitored accounts: %v", err)
		logger.Log.Errorw("monitoring aborted", "error", err)
		result.Errors = append(result.Errors, msg)
		return result
	}

	logger.Log.Infow("monitoring accounts", "count", len(accounts))

	for i := range accounts {
		account := &accounts[i]
		if err := s.monitorAccount(ctx, account, result); err != nil {
			msg := fmt.Sprintf("%s: %v", account.TwitterUsername, err)
			logger.Log.Errorw("account monitoring failed", "username", account.TwitterUsername, "error", err)
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.AccountsChecked++
	}

	logger.Log.Infow("monitoring completed",
		"accounts_checked", result.AccountsChecked,
		"new_tweets_found", result.NewTweetsFound,
		"errors", len(result.Errors))
	return result
}

// monitorAccount fetches recent tweets for one account, queues the new
// ones and advances the watermark to the most recent fetched tweet.
func (s *MonitoringService) monitorAccount(ctx context.Context, account *models.MonitoredAccount, result *MonitoringResult) error {
	tweets, err := s.reader.LatestTweets(ctx, account.TwitterUsername, maxTweetsPerFetch)
	if err != nil {
		return err
	}

	if len(tweets) == 0 {
		logger.Log.Debugw("no tweets found", "username", account.TwitterUsername)
		return nil
	}

	for _, tweet := range tweets {
		if err := s.processTweet(ctx, tweet, account, result); err != nil {
			// one bad tweet does not abort the rest of the fetch
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", account.TwitterUsername, err))
		}
	}

	// The watermark advances to the single most recent fetched tweet,
	// regardless of how many were actually new.
	return s.accounts.UpdateWatermark(ctx, account.ID, time.Now().UTC(), tweets[0].ID)
}

// processTweet queues one tweet unless it was already queued or falls
// at or below the account's watermark.
func (s *MonitoringService) processTweet(ctx context.Context, tweet models.Tweet, account *models.MonitoredAccount, result *MonitoringResult) error {
	exists, err := s.logs.ExistsForTweet(ctx, tweet.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if account.LastTweetID != "" && !tweetIDAfter(tweet.ID, account.LastTweetID) {
		return nil
	}

	err = s.logs.CreateLog(ctx, &models.CrosspostLog{
		UserID:             account.UserID,
		MonitoredAccountID: account.ID,
		TweetID:            tweet.ID,
		TweetText:          tweet.Text,
		TweetURL:           tweet.URL,
		Status:             models.StatusPending,
	})
	if err != nil {
		// a concurrent run already queued it
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	result.NewTweetsFound++
	logger.Log.Infow("queued tweet for crossposting", "username", account.TwitterUsername, "tweet_id", tweet.ID)
	return nil
}

// tweetIDAfter reports whether id is strictly newer than watermark.
// Snowflake ids compare numerically; non-numeric ids fall back to a
// lexicographic compare.
func tweetIDAfter(id, watermark string) bool {
	a, errA := strconv.ParseUint(id, 10, 64)
	b, errB := strconv.ParseUint(watermark, 10, 64)
	if errA == nil && errB == nil {
		return a > b
	}
	return id > watermark
}
