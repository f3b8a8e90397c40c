package farcaster

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client publishes casts through a Farcaster hub's HTTP API, signing
// each submission with the app's ed25519 signer. It is constructed in
// main and passed down explicitly; nothing caches it globally.
type Client struct {
	fid        uint64
	signingKey ed25519.PrivateKey
	hubURL     string
	httpClient *http.Client
}

// NewClient creates a hub client. signerKeyHex is the hex-encoded
// 32-byte ed25519 seed of the app signer.
func NewClient(fid uint64, signerKeyHex, hubURL string) (*Client, error) {
	if fid == 0 || signerKeyHex == "" {
		return nil, fmt.Errorf("farcaster configuration not found")
	}

	seed, err := hex.DecodeString(signerKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signer key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid signer key: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	return &Client{
		fid:        fid,
		signingKey: ed25519.NewKeyFromSeed(seed),
		hubURL:     hubURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

type castSubmission struct {
	FID       uint64 `json:"fid"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Signer    string `json:"signer"`
	Signature string `json:"signature,omitempty"`
}

type castResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message,omitempty"`
}

// PublishCast signs and submits a cast, returning its hash.
func (c *Client) PublishCast(ctx context.Context, text string) (string, error) {
	submission := castSubmission{
		FID:       c.fid,
		Text:      text,
		Timestamp: time.Now().UTC().Unix(),
		Signer:    hex.EncodeToString(c.signingKey.Public().(ed25519.PublicKey)),
	}

	// the signature covers the submission body without the signature field
	unsigned, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("failed to encode cast: %w", err)
	}
	submission.Signature = hex.EncodeToString(ed25519.Sign(c.signingKey, unsigned))

	body, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("failed to encode cast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hubURL+"/v1/submitMessage", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit cast: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("hub returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result castResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.Hash == "" {
		return "", fmt.Errorf("hub accepted cast but returned no hash")
	}

	return result.Hash, nil
}

// Publisher adapts the client into the publish capability consumed by
// the crosspost orchestrator.
func (c *Client) Publisher() PublishFunc {
	return c.PublishCast
}

// Ping verifies the hub is reachable. It needs no signer, so the
// health check can run server-side.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hubURL+"/v1/info", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach hub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hub returned status %d", resp.StatusCode)
	}
	return nil
}
