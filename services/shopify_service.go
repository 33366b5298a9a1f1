package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/yeremiapane/storefront-notify/models"
)

const (
	shopifyAPIVersion = "2023-10"

	// Metafield slot holding the serialized notification list for a
	// customer. Repeated PUTs to the same namespace/key overwrite the
	// same remote value.
	metafieldNamespace = "notifications"
	metafieldKey       = "messages"
)

// guestPlaceholderEmails is a stub audience, not real guest tracking: the
// source system never tracked guests and simply hardcoded two addresses.
// The "guests" filter returns these minus any that happen to be registered.
var guestPlaceholderEmails = []string{
	"guest1@example.com",
	"guest2@example.com",
}

// ShopifyConfig holds Shopify Admin API configuration.
type ShopifyConfig struct {
	// StoreURL is the myshopify host, without scheme.
	StoreURL    string
	AccessToken string
	Timeout     time.Duration
}

// ShopifyService handles Shopify Admin REST API interactions: customer
// lookup, tag writes, the notifications metafield and file uploads.
type ShopifyService struct {
	config     *ShopifyConfig
	httpClient *http.Client
}

func NewShopifyService(config *ShopifyConfig) *ShopifyService {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShopifyService{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ShopifyCustomer is the subset of the Admin API customer resource this
// service reads.
type ShopifyCustomer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Tags  string `json:"tags"`
}

type shopifyMetafield struct {
	ID        int64  `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type,omitempty"`
}

// FindByEmail reports whether at least one customer matches the email.
func (ss *ShopifyService) FindByEmail(ctx context.Context, email string) (bool, error) {
	var out struct {
		Customers []ShopifyCustomer `json:"customers"`
	}
	path := "/customers.json?email=" + url.QueryEscape(email)
	if err := ss.doRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return len(out.Customers) > 0, nil
}

// Tag overwrites the customer's tags field with the given value. This is a
// destructive overwrite, not an append; it mirrors how the storefront has
// always written tags.
func (ss *ShopifyService) Tag(ctx context.Context, customerID int64, tag string) error {
	payload := map[string]interface{}{
		"customer": map[string]interface{}{
			"id":   customerID,
			"tags": tag,
		},
	}
	path := fmt.Sprintf("/customers/%d.json", customerID)
	return ss.doRequest(ctx, http.MethodPut, path, payload, nil)
}

// GetNotificationsMetafield fetches the customer's notification list from
// the notifications/messages metafield. An absent metafield or a value
// that fails to parse degrades to an empty list.
func (ss *ShopifyService) GetNotificationsMetafield(ctx context.Context, customerID int64) ([]models.MetafieldNotification, error) {
	var out struct {
		Metafields []shopifyMetafield `json:"metafields"`
	}
	path := fmt.Sprintf("/customers/%d/metafields.json", customerID)
	if err := ss.doRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	for _, mf := range out.Metafields {
		if mf.Namespace == metafieldNamespace && mf.Key == metafieldKey {
			return models.ParseMetafieldList(mf.Value), nil
		}
	}
	return []models.MetafieldNotification{}, nil
}

// PutNotificationsMetafield serializes the list and overwrites the
// notifications/messages metafield. There is no compare-and-set on the
// remote side: concurrent writers race and the last write wins.
func (ss *ShopifyService) PutNotificationsMetafield(ctx context.Context, customerID int64, list []models.MetafieldNotification) error {
	value, err := models.EncodeMetafieldList(list)
	if err != nil {
		return errors.Wrap(err, "encode notifications metafield")
	}
	payload := map[string]interface{}{
		"metafield": map[string]interface{}{
			"namespace": metafieldNamespace,
			"key":       metafieldKey,
			"value":     value,
			"type":      "json_string",
		},
	}
	path := fmt.Sprintf("/customers/%d/metafields.json", customerID)
	return ss.doRequest(ctx, http.MethodPut, path, payload, nil)
}

// ListAllCustomers enumerates customers from the Admin API.
func (ss *ShopifyService) ListAllCustomers(ctx context.Context) ([]ShopifyCustomer, error) {
	var out struct {
		Customers []ShopifyCustomer `json:"customers"`
	}
	if err := ss.doRequest(ctx, http.MethodGet, "/customers.json?limit=250", nil, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

// ListAllCustomerEmails returns the e-mail addresses of every customer.
// Every fetched customer counts as registered.
func (ss *ShopifyService) ListAllCustomerEmails(ctx context.Context) ([]string, error) {
	customers, err := ss.ListAllCustomers(ctx)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(customers))
	for _, c := range customers {
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}
	return emails, nil
}

// GuestEmails returns the placeholder guest audience: the fixed addresses
// minus whichever already appear as registered customers.
func (ss *ShopifyService) GuestEmails(ctx context.Context) ([]string, error) {
	registered, err := ss.ListAllCustomerEmails(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(registered))
	for _, e := range registered {
		seen[e] = true
	}
	guests := make([]string, 0, len(guestPlaceholderEmails))
	for _, e := range guestPlaceholderEmails {
		if !seen[e] {
			guests = append(guests, e)
		}
	}
	return guests, nil
}

// UploadFile stores the content through the Admin API file endpoint and
// returns the public URL Shopify assigns to it.
func (ss *ShopifyService) UploadFile(ctx context.Context, content []byte, filename, mimeType string) (string, error) {
	payload := map[string]interface{}{
		"file": map[string]interface{}{
			"filename":   filename,
			"mime_type":  mimeType,
			"attachment": base64.StdEncoding.EncodeToString(content),
		},
	}
	var out struct {
		File struct {
			URL string `json:"url"`
		} `json:"file"`
	}
	if err := ss.doRequest(ctx, http.MethodPost, "/files.json", payload, &out); err != nil {
		return "", err
	}
	if out.File.URL == "" {
		return "", NewUpstreamError(nil, 0, "", "shopify file upload returned no url")
	}
	return out.File.URL, nil
}

// doRequest performs one Admin API round trip. Non-2xx responses and
// transport failures surface as UpstreamError carrying the upstream
// status and body for server-side logs.
func (ss *ShopifyService) doRequest(ctx context.Context, method, path string, payload, out interface{}) error {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s%s", ss.config.StoreURL, shopifyAPIVersion, path)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshal shopify request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "build shopify request")
	}
	req.Header.Set("X-Shopify-Access-Token", ss.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ss.httpClient.Do(req)
	if err != nil {
		return NewUpstreamError(err, 0, "", fmt.Sprintf("shopify %s %s failed", method, path))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewUpstreamError(err, resp.StatusCode, "", fmt.Sprintf("read shopify %s %s response", method, path))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewUpstreamError(nil, resp.StatusCode, string(respBody), fmt.Sprintf("shopify %s %s returned non-2xx", method, path))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return NewUpstreamError(err, resp.StatusCode, string(respBody), fmt.Sprintf("decode shopify %s %s response", method, path))
		}
	}
	return nil
}
