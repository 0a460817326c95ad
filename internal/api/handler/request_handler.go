package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/api/metrics"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

// MaxUploadBytes caps the payment proof accepted from the browser.
const MaxUploadBytes = 10 << 20

type RequestHandler struct {
	requests ports.RequestService
}

func NewRequestHandler(requests ports.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Catalog lists the services that can be requested, with their price.
//
// @Summary      Service catalog
// @Tags         requests
// @Produce      json
// @Success      200  {object}  catalogResponse
// @Router       /request [get]
func (h *RequestHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, catalogResponse{Services: h.requests.Catalog(), Nav: navFrom(c)})
}

// Submit sends a service request with its payment proof.
//
// @Summary      Request a service
// @Tags         requests
// @Accept       multipart/form-data
// @Produce      json
// @Param        serviceType  formData  string  true  "Service from the catalog"
// @Param        transfer_id  formData  string  true  "Bank transfer reference"
// @Param        file         formData  file    true  "Payment proof image"
// @Success      201  {object}  requestCreatedResponse
// @Failure      400  {object}  map[string]string
// @Router       /request [post]
func (h *RequestHandler) Submit(c echo.Context) error {
	tok, s, err := bearer(c)
	if err != nil {
		return err
	}

	file, err := readUpload(c, "file")
	if err != nil {
		return err
	}

	orderID, err := h.requests.Submit(c.Request().Context(), tok, s.Email, ports.SubmitRequestInput{
		ServiceType: c.FormValue("serviceType"),
		TransferID:  c.FormValue("transfer_id"),
		File:        file,
	})
	if errors.Is(err, domain.ErrValidation) {
		metrics.UploadsRejectedTotal.WithLabelValues("invalid").Inc()
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, requestCreatedResponse{
		Message: "Solicitud enviada con éxito",
		OrderID: orderID,
	})
}

// readUpload returns nil when the field is absent so the service reports it.
func readUpload(c echo.Context, field string) (*domain.Attachment, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		metrics.UploadsRejectedTotal.WithLabelValues("missing").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, domain.Invalid("invalid multipart form: %v", err)
	}
	if fh.Size > MaxUploadBytes {
		metrics.UploadsRejectedTotal.WithLabelValues("too_large").Inc()
		return nil, domain.Invalid("payment proof exceeds %d MB", MaxUploadBytes>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	return &domain.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        body,
	}, nil
}
