package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-garage/internal/payment"
	paymenterrors "go-garage/internal/payment/errors"
	"go-garage/internal/shared/money"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeAllocator struct {
	allocateToServiceFn func(ctx context.Context, serviceID string, req payment.RecordPaymentRequest) (payment.PaymentResponse, error)
	allocateToVehicleFn func(ctx context.Context, vehicleID string, req payment.RecordPaymentRequest) (payment.AllocationResponse, error)
	updateFn            func(ctx context.Context, id string, req payment.UpdatePaymentRequest) (payment.PaymentResponse, error)
	deleteFn            func(ctx context.Context, id string) error
	getByServiceFn      func(ctx context.Context, serviceID string) ([]payment.PaymentResponse, error)
}

func (f *fakeAllocator) AllocateToService(ctx context.Context, serviceID string, req payment.RecordPaymentRequest) (payment.PaymentResponse, error) {
	return f.allocateToServiceFn(ctx, serviceID, req)
}

func (f *fakeAllocator) AllocateToVehicle(ctx context.Context, vehicleID string, req payment.RecordPaymentRequest) (payment.AllocationResponse, error) {
	return f.allocateToVehicleFn(ctx, vehicleID, req)
}

func (f *fakeAllocator) Update(ctx context.Context, id string, req payment.UpdatePaymentRequest) (payment.PaymentResponse, error) {
	return f.updateFn(ctx, id, req)
}

func (f *fakeAllocator) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeAllocator) GetByService(ctx context.Context, serviceID string) ([]payment.PaymentResponse, error) {
	return f.getByServiceFn(ctx, serviceID)
}

func TestPaymentHandler_RecordForService(t *testing.T) {
	serviceID := uuid.New().String()

	svc := &fakeAllocator{
		allocateToServiceFn: func(ctx context.Context, sid string, req payment.RecordPaymentRequest) (payment.PaymentResponse, error) {
			assert.Equal(t, serviceID, sid)
			assert.Equal(t, "40.50", req.Amount.String())
			assert.Equal(t, payment.MethodCash, req.PaymentMethod)
			return payment.PaymentResponse{
				ID:            uuid.New().String(),
				ServiceID:     sid,
				ReceiptNumber: "PAY-000001",
				Amount:        req.Amount,
				PaymentMethod: req.PaymentMethod,
				PaymentDate:   req.PaymentDate,
			}, nil
		},
	}

	h := payment.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"amount":"40.50","payment_method":"cash","payment_date":"2026-03-01"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/services/"+serviceID+"/payments", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: serviceID}}

	h.RecordForService(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)

	var resp payment.PaymentResponse
	assert.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "PAY-000001", resp.ReceiptNumber)
	assert.Equal(t, "40.50", resp.Amount.String())
}

func TestPaymentHandler_RecordForService_AlreadySettled(t *testing.T) {
	svc := &fakeAllocator{
		allocateToServiceFn: func(ctx context.Context, sid string, req payment.RecordPaymentRequest) (payment.PaymentResponse, error) {
			return payment.PaymentResponse{}, paymenterrors.ErrServiceAlreadySettled
		},
	}

	h := payment.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"amount":"10.00","payment_method":"card","payment_date":"2026-03-01"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/services/123/payments", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: "123"}}

	h.RecordForService(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPaymentHandler_RecordForService_BadMethod(t *testing.T) {
	h := payment.NewHandler(&fakeAllocator{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"amount":"10.00","payment_method":"barter","payment_date":"2026-03-01"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/services/123/payments", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "id", Value: "123"}}

	h.RecordForService(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestPaymentHandler_RecordForVehicle(t *testing.T) {
	vehicleID := uuid.New().String()

	svc := &fakeAllocator{
		allocateToVehicleFn: func(ctx context.Context, vid string, req payment.RecordPaymentRequest) (payment.AllocationResponse, error) {
			assert.Equal(t, vehicleID, vid)
			return payment.AllocationResponse{
				Payments: []payment.PaymentResponse{
					{ReceiptNumber: "PAY-000001", Amount: money.FromUnits(3000)},
					{ReceiptNumber: "PAY-000002", Amount: money.FromUnits(3000)},
				},
				TotalApplied: money.FromUnits(6000),
				ExcessAmount: money.Zero,
			}, nil
		},
	}

	h := payment.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"amount":"60.00","payment_method":"transfer","payment_date":"2026-03-01"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/vehicles/"+vehicleID+"/payments", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "vehicleId", Value: vehicleID}}

	h.RecordForVehicle(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)

	var resp payment.AllocationResponse
	assert.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, "60.00", resp.TotalApplied.String())
}

func TestPaymentHandler_RecordForVehicle_NoOutstanding(t *testing.T) {
	svc := &fakeAllocator{
		allocateToVehicleFn: func(ctx context.Context, vid string, req payment.RecordPaymentRequest) (payment.AllocationResponse, error) {
			return payment.AllocationResponse{}, paymenterrors.ErrNoOutstandingServices
		},
	}

	h := payment.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"amount":"60.00","payment_method":"cash","payment_date":"2026-03-01"}`
	c.Request = httptest.NewRequest(http.MethodPost, "/vehicles/123/payments", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = []gin.Param{{Key: "vehicleId", Value: "123"}}

	h.RecordForVehicle(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPaymentHandler_Delete_NotFound(t *testing.T) {
	paymentID := uuid.New().String()

	svc := &fakeAllocator{
		deleteFn: func(ctx context.Context, id string) error {
			assert.Equal(t, paymentID, id)
			return paymenterrors.ErrPaymentNotFound
		},
	}

	h := payment.NewHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/payments/"+paymentID, nil)
	c.Params = []gin.Param{{Key: "id", Value: paymentID}}

	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
