package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bondcalc/internal/application/service/pricing"
	"bondcalc/internal/application/service/validation"
	appvaluation "bondcalc/internal/application/service/valuation"
	"bondcalc/internal/domain/entity/bond"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingValidator struct {
	panics bool
}

func (v failingValidator) Validate(map[string]any) (bond.Parameters, error) {
	if v.panics {
		panic("validator blew up")
	}
	return bond.Parameters{}, errors.New("lookup limits: connection reset")
}

func newTestHandler(t *testing.T, policy pricing.ZeroRatePolicy) (*Handler, *test.Hook) {
	t.Helper()
	v, err := validation.NewValidator(bond.DefaultLimits())
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()
	svc := appvaluation.NewService(v, pricing.NewEngine(policy), appvaluation.WithBatchLimits(3, 2))
	return NewHandler(svc, logger, nil), hook
}

func newFailingHandler(t *testing.T, panics bool) (*Handler, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	svc := appvaluation.NewService(failingValidator{panics: panics}, pricing.NewEngine(pricing.ZeroRateLimit))
	return NewHandler(svc, logger, []string{"https://bonds.example.com"}), hook
}

func do(h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	rec := do(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"server is running"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestValueBond(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "par",
			body: `{"faceValue":1000,"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":5,"paymentFrequency":2}`,
			want: `{"bondValue":1000.00}`,
		},
		{
			name: "zero coupon",
			body: `{"faceValue":1000,"annualCouponRate":0,"yearsToMaturity":1,"annualMarketRate":5,"paymentFrequency":2}`,
			want: `{"bondValue":951.81}`,
		},
		{
			name: "premium from strings",
			body: `{"faceValue":"1000","annualCouponRate":"6","yearsToMaturity":"1","annualMarketRate":"4","paymentFrequency":"2"}`,
			want: `{"bondValue":1019.42}`,
		},
		{
			name: "zero market rate",
			body: `{"faceValue":1000,"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":0,"paymentFrequency":2}`,
			want: `{"bondValue":1050.00}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/v1/bonds/value", tt.body)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestValueBondRejections(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateReject)

	tests := []struct {
		name    string
		body    string
		status  int
		wantErr string
	}{
		{
			name:    "missing face value",
			body:    `{"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":5,"paymentFrequency":2}`,
			status:  http.StatusBadRequest,
			wantErr: "faceValue is required",
		},
		{
			name:    "several violations",
			body:    `{"faceValue":"","annualCouponRate":5,"yearsToMaturity":0.099,"annualMarketRate":5,"paymentFrequency":0.5}`,
			status:  http.StatusBadRequest,
			wantErr: "faceValue must be a valid number; yearsToMaturity must be at least 0.1; paymentFrequency must be a whole number of at least 1",
		},
		{
			name:    "zero market rate rejected",
			body:    `{"faceValue":1000,"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":0,"paymentFrequency":2}`,
			status:  http.StatusBadRequest,
			wantErr: "Calculation resulted in an invalid value. Please check your inputs.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/v1/bonds/value", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantErr, errorOf(t, rec))
		})
	}
}

func TestValueBondMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	valid := `{"faceValue":1000,"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":5,"paymentFrequency":2}`
	for _, body := range []string{``, `[1,2]`, `"bond"`, `null`, `{"faceValue":`, valid + `garbage`, valid + `}`, valid + valid} {
		rec := do(h, http.MethodPost, "/api/v1/bonds/value", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.True(t, strings.HasPrefix(errorOf(t, rec), errBodyNotObject.Error()), "body %q", body)
	}
}

func TestValueBondTooLarge(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	body := `{"faceValue":"` + strings.Repeat("1", maxBodyBytes) + `"}`
	rec := do(h, http.MethodPost, "/api/v1/bonds/value", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, errBodyTooLarge.Error(), errorOf(t, rec))
}

func TestValueBondInternalFailure(t *testing.T) {
	for _, panics := range []bool{false, true} {
		h, hook := newFailingHandler(t, panics)

		rec := do(h, http.MethodPost, "/api/v1/bonds/value", `{"faceValue":1000}`, requestIDHeader, "req-42")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, internalFailureMessage, errorOf(t, rec))
		assert.NotContains(t, rec.Body.String(), "connection reset")
		assert.NotContains(t, rec.Body.String(), "blew up")

		var logged *logrus.Entry
		for _, entry := range hook.AllEntries() {
			if entry.Message == "request failed" {
				logged = entry
			}
		}
		require.NotNil(t, logged, "panics=%v", panics)
		assert.Equal(t, logrus.ErrorLevel, logged.Level)
		assert.Equal(t, "req-42", logged.Data["request_id"])
		assert.NotNil(t, logged.Data[logrus.ErrorKey])
	}
}

func TestValueBonds(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	body := `{"bonds":[
		{"faceValue":1000,"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":5,"paymentFrequency":2},
		{"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":5,"paymentFrequency":2},
		{"faceValue":1000,"annualCouponRate":5,"yearsToMaturity":1,"annualMarketRate":0,"paymentFrequency":2}
	]}`
	rec := do(h, http.MethodPost, "/api/v1/bonds/value/batch", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"results":[{"bondValue":1000.00},{"error":"faceValue is required"},{"bondValue":1050.00}]}`,
		rec.Body.String())
}

func TestValueBondsRejections(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	rec := do(h, http.MethodPost, "/api/v1/bonds/value/batch", `{"bonds":[{},{},{},{}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorOf(t, rec), appvaluation.ErrBatchTooLarge.Error())

	rec = do(h, http.MethodPost, "/api/v1/bonds/value/batch", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errMissingBonds.Error(), errorOf(t, rec))

	rec = do(h, http.MethodPost, "/api/v1/bonds/value/batch", `{"bonds":{"faceValue":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/bonds/value/batch", `{"bonds":[]} []`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(errorOf(t, rec), errBodyNotObject.Error()))

	rec = do(h, http.MethodPost, "/api/v1/bonds/value/batch", "{\"bonds\":[]}\n\t ")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/bonds/value/batch", `{"bonds":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestValueBondsInternalFailure(t *testing.T) {
	h, _ := newFailingHandler(t, false)

	rec := do(h, http.MethodPost, "/api/v1/bonds/value/batch", `{"bonds":[{}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, internalFailureMessage, errorOf(t, rec))
}

func TestRequestID(t *testing.T) {
	h, hook := newTestHandler(t, pricing.ZeroRateLimit)

	rec := do(h, http.MethodGet, "/", "", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request handled", entry.Message)
	assert.Equal(t, "abc-123", entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestCORS(t *testing.T) {
	h, _ := newTestHandler(t, pricing.ZeroRateLimit)

	rec := do(h, http.MethodGet, "/", "", "Origin", "http://localhost:3000")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(h, http.MethodOptions, "/api/v1/bonds/value", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "Content-Type")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	restricted, _ := newFailingHandler(t, false)
	rec = do(restricted, http.MethodGet, "/", "", "Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(restricted, http.MethodGet, "/", "", "Origin", "https://bonds.example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://bonds.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
