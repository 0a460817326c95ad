package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/api/middleware"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/guard"
	"github.com/marketingcrm/portal/internal/core/ports"
)

type stubProfiles struct {
	profile *domain.Profile
	saved   *domain.ProfileUpdate
	err     error
}

func (s *stubProfiles) Get(_ context.Context, bearer string) (*domain.Profile, error) {
	if bearer != "tok" {
		return nil, domain.ErrUnauthorized
	}
	return s.profile, s.err
}

func (s *stubProfiles) Save(_ context.Context, _ string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.saved = &upd
	return &domain.Profile{Name: upd.Name, IDType: upd.IDType}, nil
}

type stubOrders struct {
	orders  []domain.Order
	query   string
	updated [2]string
	err     error
}

func (s *stubOrders) MyRequests(context.Context, string) ([]domain.Order, error) {
	return s.orders, s.err
}
func (s *stubOrders) List(_ context.Context, _ string, q string) ([]domain.Order, error) {
	s.query = q
	return s.orders, s.err
}
func (s *stubOrders) UpdateStatus(_ context.Context, _ string, id string, st domain.OrderStatus) error {
	s.updated = [2]string{id, string(st)}
	return s.err
}
func (s *stubOrders) Invoice(_ context.Context, _ string, id string) (*domain.Attachment, error) {
	return &domain.Attachment{Filename: id + ".pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, s.err
}
func (s *stubOrders) PaymentProof(_ context.Context, _ string, id string) (*domain.Attachment, error) {
	return &domain.Attachment{Filename: "comprobante_" + id + ".jpg", Body: []byte{0xff, 0xd8}}, s.err
}

type stubRequests struct {
	got   *ports.SubmitRequestInput
	email string
	err   error
}

func (s *stubRequests) Catalog() []domain.CatalogEntry { return domain.Catalog() }
func (s *stubRequests) Submit(_ context.Context, _ string, email string, in ports.SubmitRequestInput) (string, error) {
	s.got = &in
	s.email = email
	if s.err != nil {
		return "", s.err
	}
	return "4321", nil
}

func TestProfileHandler_Get(t *testing.T) {
	h := NewProfileHandler(&stubProfiles{profile: &domain.Profile{Name: "Ana", IDType: domain.IDTypeG}})
	c, rec := newContext(http.MethodGet, "/dashboard", nil, "", &stubManager{session: userSession})
	c.Set(middleware.ContextKeyNav, guard.Navigation(domain.RoleUser))

	if err := h.Get(c); err != nil {
		t.Fatal(err)
	}
	var resp profileResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Profile.Name != "Ana" || !resp.IDTypeLocked || len(resp.Nav) == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProfileHandler_Get_Anonymous(t *testing.T) {
	h := NewProfileHandler(&stubProfiles{})
	c, _ := newContext(http.MethodGet, "/dashboard", nil, "", &stubManager{})

	if err := h.Get(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestProfileHandler_Update(t *testing.T) {
	svc := &stubProfiles{}
	h := NewProfileHandler(svc)
	body := `{"name":"Ana","idType":"J","idNumber":"123","phone":"555","address":"Calle 1"}`
	c, rec := newContext(http.MethodPut, "/dashboard", strings.NewReader(body), echo.MIMEApplicationJSON, &stubManager{session: userSession})

	if err := h.Update(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || svc.saved == nil || svc.saved.IDNumber != "123" {
		t.Fatalf("code=%d saved=%+v", rec.Code, svc.saved)
	}
}

func TestProfileHandler_Update_MissingFields(t *testing.T) {
	svc := &stubProfiles{}
	h := NewProfileHandler(svc)
	c, _ := newContext(http.MethodPut, "/dashboard", strings.NewReader(`{"name":"Ana","idType":"X"}`), echo.MIMEApplicationJSON, &stubManager{session: userSession})

	err := h.Update(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if svc.saved != nil {
		t.Fatal("save called despite invalid form")
	}
	if !strings.Contains(err.Error(), "idType must be one of: J G") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestOrderHandler_List(t *testing.T) {
	svc := &stubOrders{orders: []domain.Order{{OrderID: "1", FileName: "p.jpg"}, {OrderID: "2"}}}
	c, rec := newContext(http.MethodGet, "/orders?q=ana", nil, "", &stubManager{session: adminSession})

	if err := NewOrderHandler(svc).List(c); err != nil {
		t.Fatal(err)
	}
	if svc.query != "ana" {
		t.Fatalf("query not forwarded: %q", svc.query)
	}
	var resp struct {
		Orders []struct {
			OrderID         string `json:"order_id"`
			HasPaymentProof bool   `json:"has_payment_proof"`
		} `json:"orders"`
		Statuses []string `json:"statuses"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Orders) != 2 || !resp.Orders[0].HasPaymentProof || resp.Orders[1].HasPaymentProof {
		t.Fatalf("unexpected orders: %+v", resp.Orders)
	}
	if len(resp.Statuses) != len(domain.OrderStatuses) {
		t.Fatalf("statuses missing: %v", resp.Statuses)
	}
}

func TestOrderHandler_MyRequests_Empty(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/my-requests", nil, "", &stubManager{session: userSession})

	if err := NewOrderHandler(&stubOrders{orders: []domain.Order{}}).MyRequests(c); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Body.String(), `"orders":[]`) {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	svc := &stubOrders{}
	c, rec := newContext(http.MethodPut, "/orders/1234/status", strings.NewReader(`{"status":"Aprobado"}`), echo.MIMEApplicationJSON, &stubManager{session: adminSession})
	c.SetParamNames("id")
	c.SetParamValues("1234")

	if err := NewOrderHandler(svc).UpdateStatus(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNoContent || svc.updated != [2]string{"1234", "Aprobado"} {
		t.Fatalf("code=%d updated=%v", rec.Code, svc.updated)
	}
}

func TestOrderHandler_Invoice(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/orders/1234/invoice", nil, "", &stubManager{session: adminSession})
	c.SetParamNames("id")
	c.SetParamValues("1234")

	if err := NewOrderHandler(&stubOrders{}).Invoice(c); err != nil {
		t.Fatal(err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); cd != `attachment; filename=1234.pdf` {
		t.Fatalf("content disposition = %q", cd)
	}
}

func TestOrderHandler_PaymentProof_DefaultContentType(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/orders/9/payment-proof", nil, "", &stubManager{session: adminSession})
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := NewOrderHandler(&stubOrders{}).PaymentProof(c); err != nil {
		t.Fatal(err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != echo.MIMEOctetStream {
		t.Fatalf("content type = %q", ct)
	}
}

func TestOrderHandler_PropagatesBackendError(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/orders", nil, "", &stubManager{session: adminSession})
	if err := NewOrderHandler(&stubOrders{err: domain.ErrUnauthorized}).List(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if file != nil {
		part, err := w.CreateFormFile("file", "proof.png")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(file)
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestRequestHandler_Submit(t *testing.T) {
	svc := &stubRequests{}
	body, ct := multipartBody(t, map[string]string{"serviceType": "Branding", "transfer_id": "TX-1"}, []byte("\x89PNG\r\n\x1a\n"))
	c, rec := newContext(http.MethodPost, "/request", body, ct, &stubManager{session: userSession})

	if err := NewRequestHandler(svc).Submit(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.email != userSession.Email || svc.got.ServiceType != "Branding" || svc.got.TransferID != "TX-1" {
		t.Fatalf("unexpected input: %+v email=%s", svc.got, svc.email)
	}
	if svc.got.File == nil || svc.got.File.Filename != "proof.png" {
		t.Fatalf("file not forwarded: %+v", svc.got.File)
	}
	var resp requestCreatedResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.OrderID != "4321" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRequestHandler_Submit_NoFile(t *testing.T) {
	svc := &stubRequests{err: domain.Invalid("payment proof file is required")}
	body, ct := multipartBody(t, map[string]string{"serviceType": "Branding", "transfer_id": "TX-1"}, nil)
	c, _ := newContext(http.MethodPost, "/request", body, ct, &stubManager{session: userSession})

	err := NewRequestHandler(svc).Submit(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if svc.got == nil || svc.got.File != nil {
		t.Fatalf("missing file should reach the service as nil: %+v", svc.got)
	}
}

func TestRequestHandler_Catalog(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/request", nil, "", &stubManager{session: userSession})
	if err := NewRequestHandler(&stubRequests{}).Catalog(c); err != nil {
		t.Fatal(err)
	}
	var resp catalogResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Services) != len(domain.ServiceCatalog) {
		t.Fatalf("unexpected catalog: %+v", resp.Services)
	}
}

func TestReadiness(t *testing.T) {
	h := NewReadinessHandler(map[string]Check{
		"backend": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})
	c, rec := newContext(http.MethodGet, "/health/ready", nil, "", nil)

	if err := h.Readiness(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Dependencies["backend"].Status != "ok" || resp.Dependencies["redis"].Error != "connection refused" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
