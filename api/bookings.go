package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airtickets/internal/apierror"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID   int64  `json:"flight_id" binding:"required"`
	SeatNumber string `json:"seat_number" binding:"required"`
}

type bookingResponse struct {
	ID          int64          `json:"id"`
	FlightID    int64          `json:"flight_id"`
	SeatNumber  string         `json:"seat_number"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	Flight      *domain.Flight `json:"flight,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/available-seats/:flightId", h.availableSeats)
	router.POST("", h.create)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) list(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListActive(c.Request.Context(), identity.ID)
	if err != nil {
		apierror.Abort(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) availableSeats(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		return
	}
	flightID, ok := idParam(c, "flightId")
	if !ok {
		return
	}
	seats, err := h.service.AvailableSeats(c.Request.Context(), flightID)
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, seats)
}

func (h *BookingHandler) create(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), identity.ID, booking.CreateBookingInput{
		FlightID: req.FlightID,
		Seat:     req.SeatNumber,
	})
	if err != nil {
		apierror.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	bookingID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.CancelBooking(c.Request.Context(), identity.ID, bookingID); err != nil {
		apierror.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		FlightID:    b.FlightID,
		SeatNumber:  b.Seat.String(),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		CancelledAt: b.CancelledAt,
		Flight:      b.Flight,
	}
}
