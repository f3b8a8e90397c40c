package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/crosspostx/backend/internal/models"
)

// Reader fetches recent posts for a username, freshest-first.
type Reader interface {
	LatestTweets(ctx context.Context, username string, count int) ([]models.Tweet, error)
}

const (
	defaultTimeout = 30 * time.Second
	retryCount     = 3
)

// Client reads public timelines through the Twitter syndication API.
// It needs no credentials, only network access.
type Client struct {
	baseURL    string
	refAccount string
	httpClient *http.Client
}

// NewClient creates a syndication API client. refAccount is a known-good
// username used by TestConnection.
func NewClient(baseURL, refAccount string) *Client {
	return &Client{
		baseURL:    baseURL,
		refAccount: refAccount,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type timelineResponse struct {
	Tweets []timelineTweet `json:"tweets"`
}

type timelineTweet struct {
	IDStr     string `json:"id_str"`
	FullText  string `json:"full_text"`
	CreatedAt string `json:"created_at"`
	Name      string `json:"name"`
	Retweeted bool   `json:"retweeted"`
	InReplyTo string `json:"in_reply_to_status_id_str"`
}

// LatestTweets fetches up to count recent tweets for username. The
// fetch is retried with linear backoff; the orchestrators above it do
// not retry, so transient network noise is absorbed here.
func (c *Client) LatestTweets(ctx context.Context, username string, count int) ([]models.Tweet, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	var lastErr error
	for attempt := 0; attempt < retryCount; attempt++ {
		tweets, err := c.fetchOnce(ctx, username, count)
		if err == nil {
			return tweets, nil
		}

		lastErr = err
		if attempt < retryCount-1 {
			wait := time.Duration(attempt+1) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", retryCount, lastErr)
}

// fetchOnce performs a single timeline fetch
func (c *Client) fetchOnce(ctx context.Context, username string, count int) ([]models.Tweet, error) {
	endpoint := fmt.Sprintf("%s/timeline/profile?screen_name=%s", c.baseURL, url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timeline API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var timeline timelineResponse
	if err := json.Unmarshal(body, &timeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	tweets := make([]models.Tweet, 0, count)
	for _, raw := range timeline.Tweets {
		tweets = append(tweets, models.Tweet{
			ID:        raw.IDStr,
			Text:      raw.FullText,
			Username:  username,
			Name:      raw.Name,
			Timestamp: parseTweetTime(raw.CreatedAt),
			URL:       fmt.Sprintf("https://twitter.com/%s/status/%s", username, raw.IDStr),
			IsRetweet: raw.Retweeted,
			IsReply:   raw.InReplyTo != "",
		})
		if len(tweets) >= count {
			break
		}
	}

	return tweets, nil
}

// TestConnection fetches a single tweet from the reference account to
// verify the source platform is reachable
func (c *Client) TestConnection(ctx context.Context) error {
	tweets, err := c.LatestTweets(ctx, c.refAccount, 1)
	if err != nil {
		return err
	}
	if len(tweets) == 0 {
		return fmt.Errorf("no tweets returned for @%s", c.refAccount)
	}
	return nil
}

func parseTweetTime(value string) time.Time {
	if t, err := time.Parse(time.RubyDate, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Now().UTC()
}
