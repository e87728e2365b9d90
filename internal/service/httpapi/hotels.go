package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

type createHotelRequest struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	TotalRooms *int   `json:"total_rooms"`
}

type updateHotelRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// CreateHotel handles POST /v1/hotels.
func (h *Handler) CreateHotel(c echo.Context) error {
	var body createHotelRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.TotalRooms == nil {
		return badRequest(c, "total_rooms is required")
	}

	id, err := h.engine.CreateHotel(body.Name, body.Location, *body.TotalRooms)
	if err != nil {
		return h.writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/hotels/"+strconv.Itoa(id))
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListHotels handles GET /v1/hotels.
func (h *Handler) ListHotels(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.engine.ListHotels()})
}

// GetHotel handles GET /v1/hotels/:id.
func (h *Handler) GetHotel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	hotel, err := h.engine.GetHotel(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, hotel)
}

// UpdateHotel handles PATCH /v1/hotels/:id. Комнаты через этот маршрут не меняются.
func (h *Handler) UpdateHotel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var body updateHotelRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	updated, err := h.engine.UpdateHotel(id, domain.HotelUpdate{Name: body.Name, Location: body.Location})
	if err != nil {
		return h.writeError(c, err)
	}
	hotel, err := h.engine.GetHotel(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": updated, "hotel": hotel})
}

// DeleteHotel handles DELETE /v1/hotels/:id.
func (h *Handler) DeleteHotel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	removed, err := h.engine.DeleteHotel(id)
	if err != nil {
		return h.writeError(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hotel not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
