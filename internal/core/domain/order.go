package domain

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// OrderStatus represents the lifecycle state of an order as reported by the backend.
type OrderStatus string

const (
	StatusProcessingPayment OrderStatus = "Procesando Pago"
	StatusApproved          OrderStatus = "Aprobado"
	StatusFinished          OrderStatus = "Finalizado"
	StatusCancelled         OrderStatus = "Cancelado"
)

// OrderStatuses lists the statuses an administrator may assign, in display order.
var OrderStatuses = []OrderStatus{
	StatusProcessingPayment,
	StatusApproved,
	StatusFinished,
	StatusCancelled,
}

// Valid reports whether s is one of OrderStatuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Timestamp decodes the backend's ISO-8601 datetimes, which may come
// without a zone offset. Values without a zone are taken as UTC. The text
// the backend sent is kept for display and search.
type Timestamp struct {
	time.Time
	raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	raw := strings.Trim(string(b), `"`)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			t.raw = raw
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

// String returns the backend's text, or RFC 3339 for values built locally.
func (t Timestamp) String() string {
	if t.raw != "" {
		return t.raw
	}
	return t.UTC().Format(time.RFC3339)
}

// Order is the read/display copy of a backend order.
type Order struct {
	OrderID     string      `json:"order_id"`
	ServiceType string      `json:"serviceType"`
	Status      OrderStatus `json:"status"`
	CreatedAt   Timestamp   `json:"created_at"`
	ClientName  string      `json:"client_name,omitempty"`
	TransferID  string      `json:"transfer_id,omitempty"`
	FileName    string      `json:"file_name,omitempty"`
}

// HasPaymentProof reports whether the backend holds an uploaded proof for the order.
func (o Order) HasPaymentProof() bool {
	return o.FileName != ""
}

// Matches reports whether the order matches a free-text search on id,
// client name, status or creation date. An empty query matches everything.
func (o Order) Matches(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	lower := strings.ToLower(q)
	switch {
	case strings.Contains(o.OrderID, q):
		return true
	case strings.Contains(strings.ToLower(o.ClientName), lower):
		return true
	case strings.Contains(strings.ToLower(string(o.Status)), lower):
		return true
	case !o.CreatedAt.IsZero() && strings.Contains(o.CreatedAt.String(), q):
		return true
	}
	return false
}

// ServiceCatalog maps each requestable service to its advertised price.
// Pricing is authoritative on the backend; this is display and forwarding only.
var ServiceCatalog = map[string]float64{
	"Branding":           100,
	"Creación de Logo":   60,
	"Creación de Reels":  12,
	"Sesión Fotográfica": 100,
}

// CatalogEntry is one service offered to users.
type CatalogEntry struct {
	ServiceType string  `json:"serviceType"`
	Amount      float64 `json:"amount"`
}

// Catalog returns the service catalog sorted by service name.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(ServiceCatalog))
	for name, amount := range ServiceCatalog {
		out = append(out, CatalogEntry{ServiceType: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceType < out[j].ServiceType })
	return out
}

// ServiceRequest is a user's request for a service with its payment proof.
type ServiceRequest struct {
	ServiceType string
	Email       string
	Amount      float64
	TransferID  string
	File        Attachment
}

// Attachment is a binary document exchanged with the backend.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}
