package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/pricing"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/spapi"
)

// --- mock implementations ---

type mockService struct {
	productCalls [][]string
	priceCalls   [][]string
	products     []pricing.ProductResult
	prices       []pricing.PriceResult
	err          error
	panicWith    interface{}
}

func (m *mockService) FetchProducts(ctx context.Context, ids []string) ([]pricing.ProductResult, error) {
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	m.productCalls = append(m.productCalls, ids)
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockService) FetchPrices(ctx context.Context, ids []string) ([]pricing.PriceResult, error) {
	m.priceCalls = append(m.priceCalls, ids)
	if m.err != nil {
		return nil, m.err
	}
	return m.prices, nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func serve(t *testing.T, svc *mockService, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := NewRouter(HandlerConfig{
		Service: svc,
		Mode:    "sandbox",
		Now:     func() time.Time { return fixedNow },
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

// --- tests ---

func TestHealth_NoVendorCall(t *testing.T) {
	for _, target := range []string{"/", "/?action=health", "/api/sp-api-products"} {
		svc := &mockService{}
		w, body := serve(t, svc, http.MethodGet, target)

		assert.Equal(t, http.StatusOK, w.Code, target)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "sandbox", body["mode"])
		assert.Equal(t, "2026-03-01T12:00:00.000Z", body["timestamp"])
		assert.NotEmpty(t, body["message"])
		assert.Empty(t, svc.productCalls)
		assert.Empty(t, svc.priceCalls)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestOptions_EmptyOK(t *testing.T) {
	svc := &mockService{}
	w, _ := serve(t, svc, http.MethodOptions, "/api/sp-api-products?action=getProducts")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, svc.productCalls)
}

func TestInvalidAction(t *testing.T) {
	w, body := serve(t, &mockService{}, http.MethodGet, "/?action=debug&asins=B1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", body["error"])
	assert.Equal(t, []interface{}{"health", "getProducts", "getPrices"}, body["available"])
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestMissingASINs(t *testing.T) {
	svc := &mockService{}
	w, body := serve(t, svc, http.MethodGet, "/?action=getPrices&asins=,,")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required parameter: asins", body["error"])
	assert.Equal(t, "?action=getProducts&asins=B07ZPKBL9V,B08XYZ123", body["example"])
	assert.Empty(t, svc.priceCalls)
}

func TestGetProducts_Envelope(t *testing.T) {
	title := "Night Serum"
	svc := &mockService{products: []pricing.ProductResult{
		{ASIN: "B1", Value: &pricing.NormalizedProduct{ASIN: "B1", Title: &title, Source: pricing.Source, BulletPoints: []string{}}},
		{ASIN: "B2", Err: &pricing.ItemError{ASIN: "B2", Message: "Invalid ASIN", Code: "InvalidInput"}},
	}}
	w, body := serve(t, svc, http.MethodGet, "/api/sp-api-products?action=getProducts&asins=%20B1%20,B2")

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.productCalls, 1)
	assert.Equal(t, []string{"B1", "B2"}, svc.productCalls[0])

	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "sandbox", body["mode"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", body["timestamp"])

	products := body["products"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "Night Serum", products[0].(map[string]interface{})["title"])
	assert.Equal(t, "sp-api", products[0].(map[string]interface{})["source"])
	assert.Equal(t, "InvalidInput", products[1].(map[string]interface{})["code"])
	assert.Equal(t, "Invalid ASIN", products[1].(map[string]interface{})["error"])
}

func TestGetPrices_Envelope(t *testing.T) {
	current := 15.0
	svc := &mockService{prices: []pricing.PriceResult{
		{ASIN: "B1", Value: &pricing.NormalizedPrice{ASIN: "B1", Current: &current, Currency: "USD", InStock: true}},
	}}
	w, body := serve(t, svc, http.MethodGet, "/?action=getPrices&asins=B1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
	prices := body["prices"].([]interface{})
	assert.Equal(t, 15.0, prices[0].(map[string]interface{})["current"])
	assert.Empty(t, svc.productCalls)
}

func TestBatchFailure_500(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantError   string
		wantCode    string
		wantDetails interface{}
	}{
		{
			name:        "plain error",
			err:         errors.New("boom"),
			wantError:   "boom",
			wantCode:    "UNKNOWN_ERROR",
			wantDetails: "No additional details",
		},
		{
			name:        "sts access denied",
			err:         &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized", Fault: smithy.FaultClient},
			wantError:   "not authorized",
			wantCode:    "AccessDenied",
			wantDetails: "client",
		},
		{
			name:        "lwa invalid grant",
			err:         &spapi.Error{StatusCode: 400, Code: "invalid_grant", Message: "bad refresh token", Details: map[string]interface{}{"error": "invalid_grant"}},
			wantError:   "bad refresh token",
			wantCode:    "invalid_grant",
			wantDetails: map[string]interface{}{"error": "invalid_grant"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := serve(t, &mockService{err: tt.err}, http.MethodGet, "/?action=getProducts&asins=B1")

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantDetails, body["details"])
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestPanic_500(t *testing.T) {
	w, body := serve(t, &mockService{panicWith: "nil map"}, http.MethodGet, "/?action=getProducts&asins=B1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "UNKNOWN_ERROR", body["code"])
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
