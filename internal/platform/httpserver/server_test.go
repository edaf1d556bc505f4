package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	listingservice "autoboard/contexts/marketplace/listing-service"
	"autoboard/contexts/marketplace/listing-service/domain/entities"
	listinghttp "autoboard/contexts/marketplace/listing-service/transport/http"
	"autoboard/internal/platform/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	*Server
	module listingservice.Module
}

func newTestServer(t *testing.T, seed []entities.Listing) testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	profiles := []entities.Profile{
		{UserID: "user-1", Email: "user1@autoboard.test", Role: entities.RoleUser},
		{UserID: "mod-1", Email: "mod1@autoboard.test", Role: entities.RoleModerator},
	}
	module := listingservice.NewInMemoryModule(seed, profiles, logger)
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder()
	require.NoError(t, recorder.Register(registry))
	server := New(module, Options{
		JWTSecret: testSecret,
		Metrics:   recorder,
		Gatherer:  registry,
		Logger:    logger,
	})
	return testServer{Server: server, module: module}
}

func signToken(t *testing.T, subject string, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, principalClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s testServer) do(t *testing.T, method string, path string, body string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

const carPayload = `{
	"vehicle_type":"car",
	"brand":"Renault",
	"model":"Clio",
	"price":12500,
	"year":2019,
	"title":"Clio V TCe",
	"fuel_type":"petrol",
	"transmission":"manual"
}`

func activeListing(id string, owner string) entities.Listing {
	now := time.Now().UTC()
	return entities.Listing{
		ListingID:    id,
		OwnerID:      owner,
		Status:       entities.ListingStatusActive,
		VehicleType:  entities.VehicleTypeCar,
		Brand:        "Peugeot",
		Model:        "208",
		Price:        9000,
		Year:         2018,
		Title:        "208 Active",
		FuelType:     "diesel",
		Transmission: "manual",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestGuestSubmitThenConfirmVerification(t *testing.T) {
	server := newTestServer(t, nil)

	rr := server.do(t, http.MethodPost, "/v1/listings", `{"guest_email":"seller@example.com","listing":`+carPayload+`}`, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created listinghttp.ListingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, string(entities.ListingStatusWaitingEmailVerification), created.Item.Status)

	code, ok := server.module.Mailbox.LastCode(created.Item.ListingID)
	require.True(t, ok)

	rr = server.do(t, http.MethodPost, "/v1/listings/"+created.Item.ListingID+"/verification/confirm", `{"code":"`+code+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var verified listinghttp.VerificationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &verified))
	require.True(t, verified.Verified)

	rr = server.do(t, http.MethodPost, "/v1/listings/"+created.Item.ListingID+"/verification/confirm", `{"code":"000000"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &verified))
	require.True(t, verified.Verified, "confirming a verified listing stays verified")

	rr = server.do(t, http.MethodPost, "/v1/listings/"+created.Item.ListingID+"/verification", "", "")
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
}

func TestSubmitValidationFailureUsesErrorEnvelope(t *testing.T) {
	server := newTestServer(t, nil)

	rr := server.do(t, http.MethodPost, "/v1/listings", `{"guest_email":"not-an-email","listing":{"vehicle_type":"car"}}`, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	var envelope listinghttp.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Equal(t, "error", envelope.Status)
	require.Equal(t, "validation_failed", envelope.Error.Code)
	require.NotNil(t, envelope.Error.Details)
	require.NotEmpty(t, envelope.Error.Details.Fields)
	require.NotEmpty(t, envelope.Timestamp)
}

func TestMemberRoutesRequireToken(t *testing.T) {
	server := newTestServer(t, nil)

	rr := server.do(t, http.MethodGet, "/v1/me/quota", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "missing_token")

	rr = server.do(t, http.MethodGet, "/v1/me/quota", "", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Contains(t, rr.Body.String(), "invalid_token")
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	server := newTestServer(t, nil)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, principalClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	rr := server.do(t, http.MethodGet, "/v1/me/listings", "", signed)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApproveRequiresStaffRole(t *testing.T) {
	server := newTestServer(t, []entities.Listing{activeListing("listing-1", "user-1")})

	rr := server.do(t, http.MethodPost, "/v1/admin/listings/listing-1/approve", "", signToken(t, "user-1", "user1@autoboard.test"))
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	rr = server.do(t, http.MethodPost, "/v1/admin/listings/listing-1/reject", "", signToken(t, "mod-1", "mod1@autoboard.test"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = server.do(t, http.MethodGet, "/v1/listings/listing-1", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuotaExceededCarriesSnapshot(t *testing.T) {
	server := newTestServer(t, []entities.Listing{
		activeListing("a", "user-1"),
		activeListing("b", "user-1"),
		activeListing("c", "user-1"),
	})

	rr := server.do(t, http.MethodPost, "/v1/listings", `{"listing":`+carPayload+`}`, signToken(t, "user-1", "user1@autoboard.test"))
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
	var envelope listinghttp.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Equal(t, "quota_exceeded", envelope.Error.Code)
	require.NotNil(t, envelope.Error.Details)
	require.NotNil(t, envelope.Error.Details.Quota)
	require.Equal(t, 3, envelope.Error.Details.Quota.CurrentCount)
	require.False(t, envelope.Error.Details.Quota.CanCreate)
}

func TestBulkRejectReportsCounts(t *testing.T) {
	server := newTestServer(t, []entities.Listing{
		activeListing("a", "user-1"),
		activeListing("b", "user-1"),
	})

	rr := server.do(t, http.MethodPost, "/v1/admin/listings/bulk-reject", `{"listing_ids":["a","missing","b"],"reason":"duplicate"}`, signToken(t, "mod-1", "mod1@autoboard.test"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp listinghttp.BulkModerationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.SuccessCount)
	require.Equal(t, 1, resp.ErrorCount)
}

func TestMetricsAndHealthEndpoints(t *testing.T) {
	server := newTestServer(t, []entities.Listing{activeListing("listing-1", "user-1")})

	rr := server.do(t, http.MethodGet, "/v1/listings", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = server.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = server.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `autoboard_http_requests_total{method="GET",route="GET /v1/listings",status="200"} 1`), rr.Body.String())
}

func TestInvalidLimitIsRejected(t *testing.T) {
	server := newTestServer(t, nil)

	rr := server.do(t, http.MethodGet, "/v1/listings?limit=abc", "", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "invalid_limit")
}

func TestPriceDropReachesFavoriterInbox(t *testing.T) {
	server := newTestServer(t, []entities.Listing{activeListing("listing-1", "seller-1")})
	fan := signToken(t, "user-1", "user1@autoboard.test")

	rr := server.do(t, http.MethodPost, "/v1/listings/listing-1/favorite", "", fan)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = server.do(t, http.MethodPatch, "/v1/listings/listing-1", `{"expected_version":1,"price":8100}`, signToken(t, "seller-1", "seller@autoboard.test"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated listinghttp.ListingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	require.Equal(t, string(entities.ListingStatusPendingValidation), updated.Item.Status)
	require.Equal(t, int64(2), updated.Item.Version)

	rr = server.do(t, http.MethodGet, "/v1/notifications?unread=true", "", fan)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var inbox listinghttp.ListNotificationsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &inbox))
	require.Len(t, inbox.Items, 1)
	require.Equal(t, "10.0", inbox.Items[0].Metadata["drop_percent"])

	rr = server.do(t, http.MethodPost, "/v1/notifications/read-all", "", fan)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.JSONEq(t, `{"marked":1}`, rr.Body.String())

	rr = server.do(t, http.MethodPatch, "/v1/listings/listing-1", `{"expected_version":1,"price":8000}`, signToken(t, "seller-1", "seller@autoboard.test"))
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
}
