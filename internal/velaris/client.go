package velaris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://ua4t4so3ba.execute-api.eu-west-2.amazonaws.com/prod"

// tokenHeader authenticates the write and search endpoints; the metadata
// endpoints (activity types, field definitions) use a Bearer token instead.
const tokenHeader = "x-velaris-internal-token"

type Client struct {
	token   string
	BaseURL string
	httpc   *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		BaseURL: DefaultBaseURL,
		httpc:   http.DefaultClient,
	}
}

// Entity is a search or batch-read result; only the id is consumed.
type Entity struct {
	ID string `json:"id"`
}

// Activity is the payload posted to /activities.
type Activity struct {
	Title               string   `json:"title"`
	Type                string   `json:"type"`
	Description         string   `json:"description"`
	StartTime           string   `json:"start_time"`
	LinkedOrganisations []string `json:"linked_organisations"`
	LinkedAccounts      []string `json:"linked_accounts"`
	LinkedContacts      []string `json:"linked_contacts"`
	LinkedUsers         []string `json:"linked_users"`
	ExternalID          string   `json:"external_id"`
}

type ActivityType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconName    string `json:"iconName"`
}

type FieldDefinition struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	EntityType string `json:"entity_type"`
}

type searchFilter struct {
	FieldName string   `json:"fieldName"`
	Operator  string   `json:"operator"`
	Value     []string `json:"value"`
}

// SearchOrganisations finds organisations whose fieldName includes value.
// A non-2xx response degrades to no matches rather than failing the sync.
func (c *Client) SearchOrganisations(ctx context.Context, fieldName, value string) ([]Entity, error) {
	return c.search(ctx, "/v2/organizations/search", fieldName, value)
}

// SearchAccounts finds accounts whose fieldName includes value, with the same
// fail-soft contract as SearchOrganisations.
func (c *Client) SearchAccounts(ctx context.Context, fieldName, value string) ([]Entity, error) {
	return c.search(ctx, "/v2/accounts/search", fieldName, value)
}

func (c *Client) search(ctx context.Context, path, fieldName, value string) ([]Entity, error) {
	body := map[string]any{
		"filters": []searchFilter{{FieldName: fieldName, Operator: "includes", Value: []string{value}}},
	}
	return c.postForEntities(ctx, path, body)
}

// BatchReadContacts looks up contacts by email address. Fail-soft on non-2xx.
func (c *Client) BatchReadContacts(ctx context.Context, emails []string) ([]Entity, error) {
	return c.postForEntities(ctx, "/v2/contacts/batch/read", map[string]any{"property": "email", "values": emails})
}

// BatchReadUsers looks up users by email address. Fail-soft on non-2xx.
func (c *Client) BatchReadUsers(ctx context.Context, emails []string) ([]Entity, error) {
	return c.postForEntities(ctx, "/v2/users/batch/read", map[string]any{"property": "email", "values": emails})
}

func (c *Client) postForEntities(ctx context.Context, path string, body any) ([]Entity, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("velaris: %s returned %s, treating as no matches", path, resp.Status)
		return nil, nil
	}
	var parsed struct {
		Data []Entity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

// CreateActivity posts the activity and returns the created activity id.
// Unlike searches, a non-2xx response here is a hard error.
func (c *Client) CreateActivity(ctx context.Context, activity Activity) (string, error) {
	b, _ := json.Marshal(activity)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/activities", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("velaris create activity error: %s: %s", resp.Status, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// ActivityTypes returns the active activity types, mapped to the shape the
// configuration UI consumes.
func (c *Client) ActivityTypes(ctx context.Context) ([]ActivityType, error) {
	req, _ := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/activity-type", nil)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("velaris api error: %s: %s", resp.Status, string(body))
	}
	var parsed struct {
		Data []struct {
			ActivityTypeID string `json:"activityTypeId"`
			DisplayName    string `json:"displayName"`
			Description    string `json:"description"`
			IconName       string `json:"iconName"`
			IsActive       bool   `json:"isActive"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	var types []ActivityType
	for _, t := range parsed.Data {
		if !t.IsActive {
			continue
		}
		types = append(types, ActivityType{
			ID:          t.ActivityTypeID,
			Name:        t.DisplayName,
			Description: t.Description,
			IconName:    t.IconName,
		})
	}
	return types, nil
}

// FieldDefinitions returns the searchable fields for organisations and
// accounts, flattened to one list tagged with the entity type.
func (c *Client) FieldDefinitions(ctx context.Context) ([]FieldDefinition, error) {
	req, _ := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/field-definitions?entityType=organisation,account", nil)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("velaris api error: %s: %s", resp.Status, string(body))
	}
	var parsed map[string]struct {
		Fields []string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	var defs []FieldDefinition
	for _, entityType := range []string{"organisation", "account"} {
		group, ok := parsed[entityType]
		if !ok {
			continue
		}
		for _, field := range group.Fields {
			defs = append(defs, FieldDefinition{
				Name:       field,
				Label:      fieldLabel(field),
				EntityType: entityType,
			})
		}
	}
	return defs, nil
}

// fieldLabel turns "company_name" into "Company name".
func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
