// Package httpapi публикует операции движка бронирований по REST поверх echo.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/domain"
	"github.com/vladislavdragonenkov/hotelres/internal/service/reservation"
)

// Handler связывает HTTP-маршруты с движком.
type Handler struct {
	engine *reservation.Engine
	logger *log.Entry
}

// NewHandler создаёт обработчики; engine обязателен.
func NewHandler(engine *reservation.Engine, logger *log.Entry) *Handler {
	if engine == nil {
		panic("nil engine passed to httpapi.NewHandler")
	}
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	return &Handler{engine: engine, logger: logger}
}

// NewServer собирает echo с middleware и всеми маршрутами /v1.
func NewServer(engine *reservation.Engine, logger *log.Entry) *echo.Echo {
	h := NewHandler(engine, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Debug("http request")
			return nil
		},
	}))

	h.Register(e)
	return e
}

// Register регистрирует маршруты на e.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/v1")

	v1.POST("/hotels", h.CreateHotel)
	v1.GET("/hotels", h.ListHotels)
	v1.GET("/hotels/:id", h.GetHotel)
	v1.PATCH("/hotels/:id", h.UpdateHotel)
	v1.DELETE("/hotels/:id", h.DeleteHotel)

	v1.POST("/customers", h.CreateCustomer)
	v1.GET("/customers", h.ListCustomers)
	v1.GET("/customers/:id", h.GetCustomer)
	v1.PATCH("/customers/:id", h.UpdateCustomer)
	v1.DELETE("/customers/:id", h.DeleteCustomer)

	v1.POST("/reservations", h.CreateReservation)
	v1.GET("/reservations", h.ListReservations)
	v1.GET("/reservations/:id", h.GetReservation)
	v1.POST("/reservations/:id/cancel", h.CancelReservation)

	v1.GET("/inventory/audit", h.AuditInventory)
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": message})
}

// writeError переводит ошибки движка в HTTP-статусы.
func (h *Handler) writeError(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message})
	case errors.Is(err, domain.ErrInvalidField):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrCorrupted):
		// Повреждённая запись одновременно и ErrNotFound: проверяем её первой.
		h.logger.WithError(err).WithField("path", c.Path()).Warn("request hit corrupted record")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientAvailability):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("path", c.Path()).Error("unexpected handler error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
