package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/promo"
)

type stubPromoService struct {
	validateResp *models.ValidatePromoResponse
	validateErr  error
	lastRequest  *models.ValidatePromoRequest
}

func (s *stubPromoService) Validate(_ context.Context, req *models.ValidatePromoRequest) (*models.ValidatePromoResponse, error) {
	s.lastRequest = req
	return s.validateResp, s.validateErr
}

func (s *stubPromoService) Redeem(context.Context, string, promo.Identity, string) error {
	return nil
}

func (s *stubPromoService) Create(context.Context, *models.PromoCode) error { return nil }

func (s *stubPromoService) GetByID(context.Context, string) (*models.PromoCode, error) {
	return nil, promo.ErrPromoCodeNotFound
}

func (s *stubPromoService) Update(context.Context, *models.PromoCode) error { return nil }

func (s *stubPromoService) Delete(context.Context, string) error { return nil }

func (s *stubPromoService) List(context.Context, uint64, uint64) ([]*models.PromoCode, error) {
	return nil, nil
}

func validateRequest(t *testing.T, handler PromoCodeHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/promo-codes/validate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()

	if err := handler.Validate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	return rec
}

func TestValidate_ValidCode(t *testing.T) {
	stub := &stubPromoService{
		validateResp: &models.ValidatePromoResponse{
			Valid: true,
			Discount: &models.DiscountBreakdown{
				Cents:             299,
				Formatted:         "$2.99",
				EligibleItemCount: 1,
			},
		},
	}
	handler := NewPromoCodeHandler(stub, zap.NewNop())

	rec := validateRequest(t, handler, `{"code":"SAVE10","cart_items":[{"id":"p1","type":"game","price_cents":2999}]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.ValidatePromoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Valid || resp.Discount == nil || resp.Discount.Cents != 299 {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestValidate_RejectedCode(t *testing.T) {
	stub := &stubPromoService{
		validateResp: &models.ValidatePromoResponse{
			Valid: false,
			Error: "This promo code has expired",
		},
	}
	handler := NewPromoCodeHandler(stub, zap.NewNop())

	rec := validateRequest(t, handler, `{"code":"OLD","cart_items":[{"id":"p1","type":"game","price_cents":2999}]}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for rejected code, got %d", rec.Code)
	}

	var resp models.ValidatePromoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Valid || resp.Error != "This promo code has expired" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestValidate_MissingCode(t *testing.T) {
	handler := NewPromoCodeHandler(&stubPromoService{}, zap.NewNop())

	rec := validateRequest(t, handler, `{"cart_items":[]}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing code, got %d", rec.Code)
	}
}

// Identity must come from the upstream auth header and the connection, never
// from fields in the request body.
func TestValidate_IdentityNotClientControlled(t *testing.T) {
	stub := &stubPromoService{
		validateResp: &models.ValidatePromoResponse{Valid: true},
	}
	handler := NewPromoCodeHandler(stub, zap.NewNop())

	body := `{"code":"SAVE10","cart_items":[],"user_id":"spoofed","client_ip":"6.6.6.6"}`
	validateRequest(t, handler, body, map[string]string{
		"X-User-ID":       "u1",
		"X-Forwarded-For": "203.0.113.9",
	})

	if stub.lastRequest.UserID != "u1" {
		t.Errorf("Expected user ID from header, got %q", stub.lastRequest.UserID)
	}
	if stub.lastRequest.ClientIP != "203.0.113.9" {
		t.Errorf("Expected client IP from X-Forwarded-For, got %q", stub.lastRequest.ClientIP)
	}
}
