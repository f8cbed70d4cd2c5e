package gong

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://api.gong.io/v2"

// Client calls the Gong v2 API. Gong uses basic auth with the API key as the
// username and an empty password.
type Client struct {
	apiKey  string
	BaseURL string
	httpc   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		BaseURL: DefaultBaseURL,
		httpc:   http.DefaultClient,
	}
}

func (c *Client) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.apiKey+":"))
}

// Call is one entry of a call listing. Only the fields the sweep needs are
// decoded; full details come from GetCall.
type Call struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CallDetail is the full call record as returned by Gong. It stays an untyped
// map because deduplication rules address it by arbitrary dotted field paths.
type CallDetail map[string]any

// ID returns the call id, or "" when absent.
func (d CallDetail) ID() string {
	return scalarString(d["id"])
}

// Title returns the call title, or "" when absent.
func (d CallDetail) Title() string {
	return scalarString(d["title"])
}

// ParticipantEmails collects the non-empty participant email addresses,
// deduplicated in first-seen order.
func (d CallDetail) ParticipantEmails() []string {
	parts, ok := d["participants"].([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(parts))
	var emails []string
	for _, p := range parts {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		email := scalarString(pm["emailAddress"])
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// GetCall fetches the full call record by id.
func (c *Client) GetCall(ctx context.Context, id string) (CallDetail, error) {
	reqURL := fmt.Sprintf("%s/calls/%s", c.BaseURL, url.PathEscape(id))
	req, _ := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gong api error: %s: %s", resp.Status, string(b))
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var detail CallDetail
	if err := dec.Decode(&detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListCalls fetches completed calls starting at or after from.
func (c *Client) ListCalls(ctx context.Context, from time.Time) ([]Call, error) {
	reqURL := fmt.Sprintf("%s/calls?fromDateTime=%s&status=done", c.BaseURL, url.QueryEscape(from.UTC().Format(time.RFC3339)))
	req, _ := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gong api error: %s: %s", resp.Status, string(b))
	}
	var parsed struct {
		Calls []Call `json:"calls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	log.Printf("gong: fetched %d calls since %s", len(parsed.Calls), from.UTC().Format(time.RFC3339))
	return parsed.Calls, nil
}
