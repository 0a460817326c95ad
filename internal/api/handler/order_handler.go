package handler

import (
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// MyRequests lists the caller's own orders.
//
// @Summary      My requests
// @Tags         orders
// @Produce      json
// @Success      200  {object}  ordersResponse
// @Failure      401  {object}  map[string]string
// @Router       /my-requests [get]
func (h *OrderHandler) MyRequests(c echo.Context) error {
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.MyRequests(c.Request().Context(), tok)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: toOrderViews(orders), Nav: navFrom(c)})
}

// List returns every order, filtered by the q search term.
//
// @Summary      Review orders
// @Tags         orders
// @Produce      json
// @Param        q    query     string  false  "Search by id, client, status or date"
// @Success      200  {object}  ordersResponse
// @Failure      403  {object}  map[string]string
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.List(c.Request().Context(), tok, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{
		Orders:   toOrderViews(orders),
		Statuses: domain.OrderStatuses,
		Nav:      navFrom(c),
	})
}

// UpdateStatus assigns a new status to an order.
//
// @Summary      Update order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string         true  "Order ID"
// @Param        body  body  statusRequest  true  "New status"
// @Success      204
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}
	if err := h.orders.UpdateStatus(c.Request().Context(), tok, c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Invoice downloads the order's PDF invoice.
//
// @Summary      Download invoice
// @Tags         orders
// @Produce      application/pdf
// @Param        id   path  string  true  "Order ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c echo.Context) error {
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}
	att, err := h.orders.Invoice(c.Request().Context(), tok, c.Param("id"))
	if err != nil {
		return err
	}
	return sendAttachment(c, att)
}

// PaymentProof downloads the image uploaded with the order.
//
// @Summary      Download payment proof
// @Tags         orders
// @Produce      image/jpeg
// @Param        id   path  string  true  "Order ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /orders/{id}/payment-proof [get]
func (h *OrderHandler) PaymentProof(c echo.Context) error {
	tok, _, err := bearer(c)
	if err != nil {
		return err
	}
	att, err := h.orders.PaymentProof(c.Request().Context(), tok, c.Param("id"))
	if err != nil {
		return err
	}
	return sendAttachment(c, att)
}

func sendAttachment(c echo.Context, att *domain.Attachment) error {
	ct := att.ContentType
	if ct == "" {
		ct = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename}))
	return c.Blob(http.StatusOK, ct, att.Body)
}
