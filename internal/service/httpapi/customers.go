package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// CreateCustomer handles POST /v1/customers.
func (h *Handler) CreateCustomer(c echo.Context) error {
	var body createCustomerRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	id, err := h.engine.CreateCustomer(body.Name, body.Email)
	if err != nil {
		return h.writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/customers/"+strconv.Itoa(id))
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListCustomers handles GET /v1/customers.
func (h *Handler) ListCustomers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.engine.ListCustomers()})
}

// GetCustomer handles GET /v1/customers/:id.
func (h *Handler) GetCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	customer, err := h.engine.GetCustomer(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PATCH /v1/customers/:id.
func (h *Handler) UpdateCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var body updateCustomerRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	updated, err := h.engine.UpdateCustomer(id, domain.CustomerUpdate{Name: body.Name, Email: body.Email})
	if err != nil {
		return h.writeError(c, err)
	}
	customer, err := h.engine.GetCustomer(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": updated, "customer": customer})
}

// DeleteCustomer handles DELETE /v1/customers/:id.
func (h *Handler) DeleteCustomer(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	removed, err := h.engine.DeleteCustomer(id)
	if err != nil {
		return h.writeError(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
