package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

type createReservationRequest struct {
	CustomerID int    `json:"customer_id"`
	HotelID    int    `json:"hotel_id"`
	Rooms      int    `json:"rooms"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// CreateReservation handles POST /v1/reservations.
func (h *Handler) CreateReservation(c echo.Context) error {
	var body createReservationRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	id, err := h.engine.CreateReservation(domain.ReservationRequest{
		CustomerID: body.CustomerID,
		HotelID:    body.HotelID,
		Rooms:      body.Rooms,
		StartDate:  body.StartDate,
		EndDate:    body.EndDate,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/reservations/"+strconv.Itoa(id))
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListReservations handles GET /v1/reservations.
func (h *Handler) ListReservations(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.engine.ListReservations()})
}

// GetReservation handles GET /v1/reservations/:id.
func (h *Handler) GetReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	reservation, err := h.engine.GetReservation(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, reservation)
}

// CancelReservation handles POST /v1/reservations/:id/cancel.
// cancelled=false: бронирования нет или оно уже отменено.
func (h *Handler) CancelReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	cancelled, err := h.engine.CancelReservation(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": cancelled})
}

// AuditInventory handles GET /v1/inventory/audit.
func (h *Handler) AuditInventory(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.AuditInventory())
}
