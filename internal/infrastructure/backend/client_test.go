package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketingcrm/portal/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New(Config{BaseURL: "not a url"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestToken_SendsFormAndDecodesPair(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/token" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("username") != "ana@example.com" || r.PostForm.Get("password") != "pw" {
			t.Errorf("form = %v", r.PostForm)
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "a.b.c", "refresh_token": "r", "token_type": "bearer"})
	})

	pair, err := c.Token(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if pair.AccessToken != "a.b.c" || pair.RefreshToken != "r" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestToken_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})

	_, err := c.Token(context.Background(), "ana@example.com", "bad")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestToken_MissingAccessToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token_type": "bearer"})
	})

	_, err := c.Token(context.Background(), "ana@example.com", "pw")
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr error
	}{
		{"ok", http.StatusOK, map[string]string{"access_token": "a.b.c", "refresh_token": "r"}, nil},
		{"exists", http.StatusBadRequest, map[string]string{"detail": "Email already registered"}, domain.ErrUserExists},
		{"server error", http.StatusInternalServerError, map[string]string{"detail": "Failed to create user"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var in map[string]string
				_ = json.NewDecoder(r.Body).Decode(&in)
				if in["email"] != "ana@example.com" || in["role"] != "admin" {
					t.Errorf("payload = %v", in)
				}
				writeJSON(w, tt.status, tt.body)
			})

			pair, err := c.Register(context.Background(), "ana@example.com", "pw", domain.RoleAdmin)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.status >= 300:
				var be *domain.BackendError
				if !errors.As(err, &be) || be.Status != tt.status || be.Detail != "Failed to create user" {
					t.Fatalf("expected BackendError %d, got %v", tt.status, err)
				}
			default:
				if err != nil || pair.AccessToken != "a.b.c" {
					t.Fatalf("pair=%+v err=%v", pair, err)
				}
			}
		})
	}
}

func TestRefreshToken_SendsJSONString(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != `"refresh-1"` {
			t.Errorf("body = %s", b)
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "new.access.tok", "token_type": "bearer"})
	})

	tok, err := c.RefreshToken(context.Background(), "refresh-1")
	if err != nil {
		t.Fatal(err)
	}
	if tok != "new.access.tok" {
		t.Errorf("token = %q", tok)
	}
}

func TestBearerAndStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("authorization = %q", got)
				}
				writeJSON(w, tt.status, map[string]string{"detail": "nope"})
			})

			_, err := c.Profile(context.Background(), "tok")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"Acceso denegado"}`, "Acceso denegado"},
		{`{"detail":[{"loc":["body"],"msg":"field required"}]}`, `[{"loc":["body"],"msg":"field required"}]`},
		{`Internal Server Error`, "Internal Server Error"},
	}
	for _, tt := range tests {
		if got := parseDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("parseDetail(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
}

func TestProfileRoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "ana@example.com", "idType": "J", "isIdNumberLocked": true})
		case http.MethodPut:
			var upd domain.ProfileUpdate
			_ = json.NewDecoder(r.Body).Decode(&upd)
			writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "name": upd.Name, "phone": upd.Phone})
		}
	})

	p, err := c.Profile(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if p.IDType != domain.IDTypeJ || !p.IsIDNumberLocked {
		t.Errorf("profile = %+v", p)
	}

	p, err = c.UpdateProfile(context.Background(), "tok", domain.ProfileUpdate{Name: "Ana", Phone: "555"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Ana" || p.Phone != "555" {
		t.Errorf("updated = %+v", p)
	}
}

func TestOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders":
			_, _ = io.WriteString(w, `[{"order_id":"1234","serviceType":"Branding","status":"Pendiente","created_at":"2025-03-01T10:20:30.123456","client_name":"Ana"}]`)
		case "/my-requests":
			_, _ = io.WriteString(w, `null`)
		}
	})

	all, err := c.Orders(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].OrderID != "1234" || all[0].CreatedAt.IsZero() {
		t.Errorf("orders = %+v", all)
	}

	mine, err := c.MyRequests(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if mine == nil || len(mine) != 0 {
		t.Errorf("my requests = %#v", mine)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/orders/1234/update-status" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["status"] != string(domain.StatusFinished) {
			t.Errorf("payload = %v", in)
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Estado actualizado"})
	})

	if err := c.UpdateOrderStatus(context.Background(), "tok", "1234", domain.StatusFinished); err != nil {
		t.Fatal(err)
	}
}

func TestDownloads(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/1234/invoice":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="1234.pdf"`)
			_, _ = io.WriteString(w, "%PDF-1.4")
		case "/admin/download-payment/1234":
			w.Header().Set("Content-Type", "image/png")
			_, _ = io.WriteString(w, "png")
		default:
			http.NotFound(w, r)
		}
	})

	inv, err := c.Invoice(context.Background(), "tok", "1234")
	if err != nil {
		t.Fatal(err)
	}
	if inv.Filename != "1234.pdf" || inv.ContentType != "application/pdf" || string(inv.Body) != "%PDF-1.4" {
		t.Errorf("invoice = %+v", inv)
	}

	proof, err := c.PaymentProof(context.Background(), "tok", "1234")
	if err != nil {
		t.Fatal(err)
	}
	if proof.Filename != "" || proof.ContentType != "image/png" {
		t.Errorf("proof = %+v", proof)
	}
}

func TestRequestService_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		want := map[string]string{
			"serviceType": "Branding",
			"email":       "ana@example.com",
			"amount":      "100",
			"transfer_id": "TX-1",
		}
		for k, v := range want {
			if got := r.FormValue(k); got != v {
				t.Errorf("%s = %q, want %q", k, got, v)
			}
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if hdr.Filename != "proof.png" || hdr.Header.Get("Content-Type") != "image/png" {
			t.Errorf("file header = %+v", hdr.Header)
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Solicitud enviada con éxito", "order_id": "4321"})
	})

	id, err := c.RequestService(context.Background(), "tok", domain.ServiceRequest{
		ServiceType: "Branding",
		Email:       "ana@example.com",
		Amount:      100,
		TransferID:  "TX-1",
		File:        domain.Attachment{Filename: "proof.png", ContentType: "image/png", Body: []byte("png")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "4321" {
		t.Errorf("order id = %q", id)
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Orders(context.Background(), "tok")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to MarketingCRM!"})
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if err := down.Ping(context.Background()); err == nil {
		t.Fatal("expected error on 502")
	}
}
