package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/storefront-notify/models"
)

const testStoreURL = "test-store.myshopify.com"

func newTestShopifyService() *ShopifyService {
	return NewShopifyService(&ShopifyConfig{
		StoreURL:    testStoreURL,
		AccessToken: "shpat_test_token",
	})
}

func apiURL(path string) string {
	return fmt.Sprintf("https://%s/admin/api/%s%s", testStoreURL, shopifyAPIVersion, path)
}

func TestFindByEmail(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	httpmock.RegisterResponder("GET", apiURL("/customers.json"),
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "shpat_test_token", req.Header.Get("X-Shopify-Access-Token"))
			if req.URL.Query().Get("email") == "known@example.com" {
				return httpmock.NewStringResponse(200, `{"customers":[{"id":1,"email":"known@example.com"}]}`), nil
			}
			return httpmock.NewStringResponse(200, `{"customers":[]}`), nil
		})

	registered, err := ss.FindByEmail(context.Background(), "known@example.com")
	assert.NoError(t, err)
	assert.True(t, registered)

	registered, err = ss.FindByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.False(t, registered)
}

func TestFindByEmailUpstreamError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	httpmock.RegisterResponder("GET", apiURL("/customers.json"),
		httpmock.NewStringResponder(500, `{"errors":"something broke"}`))

	_, err := ss.FindByEmail(context.Background(), "known@example.com")
	assert.Error(t, err)

	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, 500, upstream.Status)
	assert.Contains(t, upstream.Body, "something broke")
}

func TestTagOverwritesCustomerTags(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	var captured map[string]map[string]interface{}
	httpmock.RegisterResponder("PUT", apiURL("/customers/42.json"),
		func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			assert.NoError(t, json.Unmarshal(body, &captured))
			return httpmock.NewStringResponse(200, `{"customer":{"id":42}}`), nil
		})

	err := ss.Tag(context.Background(), 42, "Flash Sale")
	assert.NoError(t, err)
	assert.Equal(t, "Flash Sale", captured["customer"]["tags"])
}

func TestGetNotificationsMetafield(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	value := `[{"title":"A","message":"hello","date":"2024-01-01T00:00:00Z"}]`
	payload := fmt.Sprintf(`{"metafields":[
		{"id":1,"namespace":"other","key":"messages","value":"ignored"},
		{"id":2,"namespace":"notifications","key":"messages","value":%q}
	]}`, value)
	httpmock.RegisterResponder("GET", apiURL("/customers/42/metafields.json"),
		httpmock.NewStringResponder(200, payload))

	list, err := ss.GetNotificationsMetafield(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Title)
}

func TestGetNotificationsMetafieldAbsentOrMalformed(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	httpmock.RegisterResponder("GET", apiURL("/customers/1/metafields.json"),
		httpmock.NewStringResponder(200, `{"metafields":[]}`))
	httpmock.RegisterResponder("GET", apiURL("/customers/2/metafields.json"),
		httpmock.NewStringResponder(200, `{"metafields":[{"namespace":"notifications","key":"messages","value":"not json"}]}`))

	list, err := ss.GetNotificationsMetafield(context.Background(), 1)
	assert.NoError(t, err)
	assert.Empty(t, list)

	// Parse failure degrades to empty, never fails the caller.
	list, err = ss.GetNotificationsMetafield(context.Background(), 2)
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestPutNotificationsMetafield(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	var captured map[string]map[string]interface{}
	httpmock.RegisterResponder("PUT", apiURL("/customers/42/metafields.json"),
		func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			assert.NoError(t, json.Unmarshal(body, &captured))
			return httpmock.NewStringResponse(200, `{"metafield":{"id":2}}`), nil
		})

	err := ss.PutNotificationsMetafield(context.Background(), 42, []models.MetafieldNotification{
		{Title: "A", Message: "hello", Date: "2024-01-01T00:00:00Z"},
	})
	assert.NoError(t, err)

	mf := captured["metafield"]
	assert.Equal(t, "notifications", mf["namespace"])
	assert.Equal(t, "messages", mf["key"])
	assert.Equal(t, "json_string", mf["type"])

	stored := models.ParseMetafieldList(mf["value"].(string))
	assert.Len(t, stored, 1)
	assert.Equal(t, "A", stored[0].Title)
}

func TestGuestEmailsPlaceholder(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	// guest1 happens to be registered, so only guest2 remains.
	httpmock.RegisterResponder("GET", apiURL("/customers.json"),
		httpmock.NewStringResponder(200, `{"customers":[{"id":1,"email":"guest1@example.com"},{"id":2,"email":"real@example.com"}]}`))

	guests, err := ss.GuestEmails(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"guest2@example.com"}, guests)
}

func TestUploadFile(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ss := newTestShopifyService()

	var captured map[string]map[string]interface{}
	httpmock.RegisterResponder("POST", apiURL("/files.json"),
		func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			assert.NoError(t, json.Unmarshal(body, &captured))
			return httpmock.NewStringResponse(200, `{"file":{"url":"https://cdn.shopify.com/files/banner.png"}}`), nil
		})

	url, err := ss.UploadFile(context.Background(), []byte("png-bytes"), "banner.png", "image/png")
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.shopify.com/files/banner.png", url)
	assert.Equal(t, "banner.png", captured["file"]["filename"])
	assert.NotEmpty(t, captured["file"]["attachment"])
}
