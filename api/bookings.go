package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/middleware"
	"github.com/Domenick1991/tripoffice/internal/service/booking"
	"github.com/Domenick1991/tripoffice/internal/timerange"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	ranges  *timerange.Builder
}

type createBookingResponse struct {
	Message   string          `json:"message"`
	Booking   *domain.Booking `json:"booking"`
	EmailSent bool            `json:"emailSent"`
}

func NewBookingHandler(service booking.BookingUseCase, ranges *timerange.Builder) *BookingHandler {
	return &BookingHandler{service: service, ranges: ranges}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, gate *Gate) {
	router.POST("", h.create)

	admin := router.Group("", gate.Authenticated())
	admin.GET("/admin", gate.Allow("bookings.list"), h.list)
	admin.GET("/admin/:id", gate.Allow("bookings.get"), h.get)
	admin.PATCH("/admin/:id", gate.Allow("bookings.update"), h.updateState)
	admin.GET("/advancedTripsInfos/admin", gate.Allow("reports.trips"), h.tripReports)
	admin.GET("/getTotalBookingsAndRevenue/admin", gate.Allow("reports.totals"), h.totalReport)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid booking payload"))
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	message := "Booking created and ticket sent by email"
	if !result.EmailSent {
		message = "Booking created, but the ticket email could not be sent. Please contact support."
	}
	c.JSON(http.StatusCreated, createBookingResponse{
		Message:   message,
		Booking:   result.Booking,
		EmailSent: result.EmailSent,
	})
}

func (h *BookingHandler) list(c *gin.Context) {
	query, err := h.listQuery(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	page, err := h.service.ListBookings(c.Request.Context(), query)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BookingHandler) listQuery(c *gin.Context) (booking.ListQuery, error) {
	window, err := h.ranges.Build(c.Request.URL.Query())
	if err != nil {
		return booking.ListQuery{}, err
	}

	filter := domain.BookingFilter{
		TripName: c.Query("tripName"),
		Sort:     domain.SortDesc,
	}
	if strings.EqualFold(c.Query("sort"), string(domain.SortAsc)) {
		filter.Sort = domain.SortAsc
	}
	if window != nil {
		filter.From, filter.To = window.Start, window.End
	}

	switch strings.ToLower(c.DefaultQuery("transferFilter", "all")) {
	case "all", "":
	case "true":
		v := true
		filter.Transportation = &v
	case "false":
		v := false
		filter.Transportation = &v
	default:
		return booking.ListQuery{}, apperror.Validation("transferFilter must be all, true or false")
	}

	return booking.ListQuery{
		Filter: filter,
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}, nil
}

// queryInt returns 0 for a missing or non-numeric parameter so the service default applies.
func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) updateState(c *gin.Context) {
	var req booking.StateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperror.Validation("Invalid request body"))
		return
	}

	b, err := h.service.UpdateState(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) tripReports(c *gin.Context) {
	window, err := h.ranges.Build(c.Request.URL.Query())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	stats, err := h.service.TripReports(c.Request.Context(), window)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *BookingHandler) totalReport(c *gin.Context) {
	window, err := h.ranges.Build(c.Request.URL.Query())
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	totals, err := h.service.TotalReport(c.Request.Context(), window)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, []domain.BookingTotals{totals})
}
