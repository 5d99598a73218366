package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flexprice/ticketing/internal/api/cron"
	"github.com/flexprice/ticketing/internal/api/dto"
	v1 "github.com/flexprice/ticketing/internal/api/v1"
	"github.com/flexprice/ticketing/internal/domain/billing"
	"github.com/flexprice/ticketing/internal/rest/middleware"
	"github.com/flexprice/ticketing/internal/service"
	"github.com/flexprice/ticketing/internal/testutil"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

const cronSecret = "s3cret"

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	cfg := *s.GetConfig()
	cfg.Cron.Secret = cronSecret
	cfg.Metrics.Enabled = true

	stores := s.GetStores()
	params := service.ServiceParams{
		Logger:          s.GetLogger(),
		Config:          &cfg,
		DB:              s.GetDB(),
		Cache:           s.GetCache(),
		Clock:           s.GetClock(),
		SubRepo:         stores.SubscriptionRepo,
		ServiceRepo:     stores.ServiceRepo,
		TicketRepo:      stores.TicketRepo,
		TicketPublisher: s.GetPublisher(),
		Metrics:         s.GetMetrics(),
		Sentry:          s.GetSentry(),
	}

	paymentDates := service.NewPaymentDateService(params)
	tickets := service.NewTicketService(params)
	s.router = NewRouter(Handlers{
		Health:       v1.NewHealthHandler(s.GetDB(), s.GetLogger()),
		Billing:      v1.NewBillingHandler(service.NewBillingService(params), s.GetLogger()),
		Subscription: v1.NewSubscriptionHandler(paymentDates, tickets, s.GetLogger()),
		CronSweep:    cron.NewSweepHandler(paymentDates, tickets, s.GetLogger()),
	}, &cfg, s.GetLogger(), s.GetMetrics())
}

func (s *RouterSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestRequestIDIsPropagated() {
	w := s.do(http.MethodGet, "/health", nil, map[string]string{types.HeaderRequestID: "req-42"})
	s.Equal("req-42", w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestCalculatePaymentDate() {
	w := s.do(http.MethodPost, "/v1/billing/payment-date", dto.CalculatePaymentDateRequest{
		StartDate:   "2025-03-15",
		Frequency:   types.FrequencyMonthly,
		Renovation:  types.RenewalFirstDay,
		PaymentType: types.PaymentTypeAdvance,
	}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.PaymentDateResponse
	s.decode(w, &resp)
	s.Require().NotNil(resp.PaymentDate)
	s.Equal("2025-04-01", *resp.PaymentDate)
}

func (s *RouterSuite) TestValidationErrors() {
	w := s.do(http.MethodPost, "/v1/billing/payment-date", "{not json", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	var errResp middleware.ErrorResponse
	s.decode(w, &errResp)
	s.False(errResp.Success)
	s.Equal("Invalid request format", errResp.Error.Display)

	w = s.do(http.MethodPost, "/v1/billing/service-period/contains", dto.ServicePeriodContainsRequest{
		Date:  "2025-04-10",
		Start: "2025-04-30",
		End:   "2025-04-01",
	}, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.decode(w, &errResp)
	s.Equal("End must be on or after start", errResp.Error.Display)
}

func (s *RouterSuite) TestServicePeriodRoutes() {
	w := s.do(http.MethodPost, "/v1/billing/service-period", dto.ServicePeriodRequest{
		PaymentDate: "2025-04-30",
		PaymentType: types.PaymentTypeArrears,
		Frequency:   types.FrequencyMonthly,
		ServiceName: "Hosting",
	}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var period dto.ServicePeriodResponse
	s.decode(w, &period)
	s.Equal("2025-04-01", period.Start)
	s.Equal(30, period.Days)

	w = s.do(http.MethodPost, "/v1/billing/service-period/next", dto.NextServicePeriodRequest{
		Start:       period.Start,
		End:         period.End,
		PaymentType: types.PaymentTypeArrears,
		Frequency:   types.FrequencyMonthly,
	}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &period)
	s.Equal("2025-05-01", period.Start)
	s.Equal("2025-05-01", period.End)
}

func (s *RouterSuite) TestSubscriptionRoutes() {
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)
	base := "/v1/subscriptions/" + sub.ID

	w := s.do(http.MethodGet, base+"/payment-date", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var preview dto.PaymentDatePreviewResponse
	s.decode(w, &preview)
	s.Equal("2025-04-01", *preview.PaymentDate)
	s.True(preview.NeedsRecalculation)

	w = s.do(http.MethodGet, base+"/status", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var status dto.SubscriptionStatusResponse
	s.decode(w, &status)
	s.Equal(types.SubscriptionStatusActive, status.Status)

	w = s.do(http.MethodPost, base+"/proportional-ticket", nil, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var generated dto.ProportionalTicketResponse
	s.decode(w, &generated)
	s.Equal(billing.DecisionProrated, generated.Decision)
	s.Require().NotNil(generated.Ticket)

	w = s.do(http.MethodPost, base+"/proportional-ticket", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &generated)
	s.Equal(billing.DecisionAlreadyExists, generated.Decision)

	w = s.do(http.MethodGet, base+"/tickets?limit=10", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list dto.ListTicketsResponse
	s.decode(w, &list)
	s.Len(list.Items, 1)
	s.Equal(1, list.Pagination.Total)
	s.Equal(10, list.Pagination.Limit)

	w = s.do(http.MethodGet, base+"/tickets?limit=0", nil, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestSubscriptionRoutes_TenantScoped() {
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	sub := s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	w := s.do(http.MethodGet, "/v1/subscriptions/"+sub.ID+"/status", nil,
		map[string]string{types.HeaderTenantID: "tenant_other"})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/v1/subscriptions/sub_missing/payment-date", nil, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestCronRoutes() {
	svc := s.CreateService("Hosting", types.FrequencyMonthly, types.RenewalFirstDay, "100")
	s.CreateSubscription(svc, testutil.Date(2025, time.March, 10), types.PaymentTypeAdvance, nil)

	w := s.do(http.MethodPost, "/cron/subscriptions/payment-dates", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/cron/subscriptions/payment-dates", nil,
		map[string]string{types.HeaderCronSecret: "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/cron/subscriptions/payment-dates", nil,
		map[string]string{types.HeaderCronSecret: cronSecret})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var sweep dto.SweepResponse
	s.decode(w, &sweep)
	s.Equal(1, sweep.TotalCandidates)
	s.Equal(1, sweep.Updated)

	w = s.do(http.MethodPost, "/cron/tickets/proportional", nil,
		map[string]string{types.HeaderAuthorization: "Bearer " + cronSecret})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &sweep)
	s.Equal(1, sweep.TotalCandidates)
	s.Equal(1, sweep.Updated)
	s.Equal(1, sweep.Decisions[billing.DecisionProrated.String()])
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/health", nil, nil)

	w := s.do(http.MethodGet, "/metrics", nil, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(strings.Contains(w.Body.String(), "billing_http_requests_total"), "metrics body lacks the request counter")
}
