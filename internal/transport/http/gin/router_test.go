package httpgin_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/payment"
	"github.com/kirinyoku/dakshina/internal/repository/memory"
	"github.com/kirinyoku/dakshina/internal/service"
	"github.com/kirinyoku/dakshina/internal/service/booking"
	httpgin "github.com/kirinyoku/dakshina/internal/transport/http/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type apiFixture struct {
	router   *gin.Engine
	gw       *payment.HMACGateway
	pandit   domain.Actor
	customer domain.Actor
	admin    domain.Actor
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	f := &apiFixture{
		gw:       payment.NewHMACGateway(payment.Config{KeyID: "key_test", KeySecret: "s3cret"}),
		pandit:   domain.Actor{ID: uuid.New(), Role: domain.RolePandit},
		customer: domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer},
		admin:    domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
	}
	store.AddPandit(domain.Pandit{
		ID:          f.pandit.ID,
		Name:        "Pt. Shastri",
		HomeCity:    "Varanasi",
		MaxTravelKm: 1200,
		Active:      true,
		Verified:    true,
	})
	store.AddDistance(domain.CityDistance{FromCity: "Delhi", ToCity: "Varanasi", DistanceKm: 800, DriveHours: 13})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svcs := service.NewServices(store, store, f.gw, nil, nil, nil, log, service.Config{
		Booking: booking.Config{PaymentKeyID: "key_test"},
	})
	f.router = httpgin.NewRouter(svcs, nil, secret, log)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, actor *domain.Actor, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		tok, err := httpgin.IssueToken(secret, *actor, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (f *apiFixture) createBooking(t *testing.T) booking.CreateResult {
	t.Helper()

	w := f.do(t, http.MethodPost, "/bookings", &f.customer, map[string]any{
		"pandit_id":       f.pandit.ID.String(),
		"event_date":      time.Now().AddDate(0, 1, 0).UTC().Format(time.RFC3339),
		"event_type":      "Griha Pravesh",
		"venue_city":      "Varanasi",
		"dakshina_amount": 5000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[booking.CreateResult](t, w)
}

func TestRouter_Health(t *testing.T) {
	f := newAPI(t)
	w := f.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CalculateFees(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/bookings/calculate-fees", nil, map[string]any{"dakshina_amount": 5000})
	require.Equal(t, http.StatusOK, w.Code)
	charges := decode[domain.Charges](t, w)
	assert.Equal(t, int64(5000), charges.DakshinaAmount)
	assert.Equal(t, charges.Sum(), charges.GrandTotal)

	w = f.do(t, http.MethodPost, "/bookings/calculate-fees", nil, map[string]any{"dakshina_amount": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrValidation.Code, decode[httpgin.ErrorResponse](t, w).Code)
}

func TestRouter_TravelCalculate(t *testing.T) {
	f := newAPI(t)

	w := f.do(t, http.MethodPost, "/travel/calculate", nil, map[string]any{
		"pandit_id": f.pandit.ID.String(),
		"to_city":   "Delhi",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[httpgin.TravelCalculateResponse](t, w)
	assert.Equal(t, 800.0, resp.DistanceKm)
	assert.NotEmpty(t, resp.Options)

	w = f.do(t, http.MethodPost, "/travel/calculate", nil, map[string]any{"to_city": "Delhi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/travel/calculate", nil, map[string]any{"from_city": "Delhi", "to_city": "Pune"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Auth(t *testing.T) {
	f := newAPI(t)
	id := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		actor  *domain.Actor
		header string
		want   int
	}{
		{name: "no token", method: http.MethodGet, path: "/bookings/" + id, want: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/bookings/" + id, header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "pandit creates", method: http.MethodPost, path: "/bookings", actor: &f.pandit, want: http.StatusForbidden},
		{name: "customer on admin", method: http.MethodGet, path: "/admin/payouts", actor: &f.customer, want: http.StatusForbidden},
		{name: "customer accepts", method: http.MethodPatch, path: "/bookings/" + id + "/accept", actor: &f.customer, want: http.StatusForbidden},
		{name: "bad id", method: http.MethodGet, path: "/bookings/not-a-uuid", actor: &f.customer, want: http.StatusBadRequest},
		{name: "unknown booking", method: http.MethodGet, path: "/bookings/" + id, actor: &f.admin, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var headers []string
			if tt.header != "" {
				headers = []string{"Authorization", tt.header}
			}
			w := f.do(t, tt.method, tt.path, tt.actor, nil, headers...)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_BookingFlow(t *testing.T) {
	f := newAPI(t)
	res := f.createBooking(t)
	require.NotNil(t, res.PaymentOrder)
	assert.Equal(t, res.Booking.GrandTotal, res.PaymentOrder.Amount)
	path := "/bookings/" + res.Booking.ID.String()

	w := f.do(t, http.MethodGet, path, &f.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = f.do(t, http.MethodGet, path, &f.customer, nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleCustomer}
	w = f.do(t, http.MethodGet, path, &stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, path+"/payment/verify", &f.customer, map[string]any{
		"order_id":   res.PaymentOrder.OrderID,
		"payment_id": "pay_1",
		"signature":  "forged",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrInvalidSignature.Code, decode[httpgin.ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, path+"/payment/verify", &f.customer, map[string]any{
		"order_id":   res.PaymentOrder.OrderID,
		"payment_id": "pay_2",
		"signature":  f.gw.Sign(res.PaymentOrder.OrderID, "pay_2"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusPanditRequested, decode[domain.Booking](t, w).Status)

	w = f.do(t, http.MethodPatch, path+"/accept", &f.pandit, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.StatusConfirmed, decode[domain.Booking](t, w).Status)

	w = f.do(t, http.MethodPost, path+"/status-update", &f.pandit, map[string]any{"status": "COMPLETED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrInvalidTransition.Code, decode[httpgin.ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodGet, path+"/history", &f.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.StatusUpdate](t, w), 3)

	w = f.do(t, http.MethodGet, path+"/invoice", &f.customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), res.Booking.BookingNumber)
}

func TestRouter_CancelAndDecide(t *testing.T) {
	f := newAPI(t)
	res := f.createBooking(t)
	path := "/bookings/" + res.Booking.ID.String()

	w := f.do(t, http.MethodPost, path+"/payment/verify", &f.customer, map[string]any{
		"order_id":   res.PaymentOrder.OrderID,
		"payment_id": "pay_1",
		"signature":  f.gw.Sign(res.PaymentOrder.OrderID, "pay_1"),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, path+"/cancel", &f.customer, map[string]any{"reason": "travel plans changed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancel := decode[booking.CancelResult](t, w)
	assert.Equal(t, domain.StatusCancellationRequested, cancel.Booking.Status)
	assert.True(t, cancel.Estimate)

	w = f.do(t, http.MethodGet, "/admin/cancellations", &f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	queue := decode[httpgin.ListResponse](t, w)
	require.Len(t, queue.Items, 1)
	assert.Equal(t, res.Booking.ID, queue.Items[0].ID)

	adminPath := "/admin/cancellations/" + res.Booking.ID.String()
	w = f.do(t, http.MethodPatch, adminPath, &f.admin, map[string]any{"action": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, adminPath, &f.admin, map[string]any{"action": "REJECT", "note": "inside window"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decision := decode[booking.DecisionResult](t, w)
	assert.Equal(t, domain.StatusPanditRequested, decision.Booking.Status)
}

func TestRouter_Payouts(t *testing.T) {
	f := newAPI(t)
	res := f.createBooking(t)

	w := f.do(t, http.MethodPatch, "/admin/payouts/"+res.Booking.ID.String(), &f.admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, "/admin/payouts/"+res.Booking.ID.String(), &f.admin, map[string]any{"reference": "UTR-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrNotPayoutEligible.Code, decode[httpgin.ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodGet, "/admin/payouts?limit=5", &f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[httpgin.ListResponse](t, w)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Limit)
}
