package httpgin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	redisrepo "github.com/kirinyoku/dakshina/internal/repository/redis"
	"github.com/kirinyoku/dakshina/internal/service"
	"github.com/kirinyoku/dakshina/internal/service/booking"
)

// @Summary  Create booking (idempotent)
// @Param    req body  CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} booking.CreateResult
// @Failure  400 {object} ErrorResponse "PANDIT_UNAVAILABLE / DATE_UNAVAILABLE"
// @Failure  409 {object} ErrorResponse "idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Security BearerAuth
// @Router   /bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)

		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		eventDate, err := parseRFC3339(req.EventDate)
		if err != nil {
			badRequest(c, "invalid event_date (RFC3339)")
			return
		}

		in := booking.CreateRequest{
			EventDate:         eventDate,
			EventDays:         req.EventDays,
			EventType:         req.EventType,
			Muhurat:           req.Muhurat,
			VenueCity:         req.VenueCity,
			DakshinaAmount:    req.DakshinaAmount,
			AccommodationCost: req.AccommodationCost,
			TravelMode:        domain.TravelMode(req.TravelMode),
			Food:              domain.FoodArrangement(req.FoodArrangement),
		}
		if req.PanditID != "" {
			id := uuid.MustParse(req.PanditID)
			in.PanditID = &id
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(actor.ID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, errorBody(c, "IDEMPOTENCY_IN_PROGRESS", "idempotency key in progress"))
				return
			}
		}

		res, err := svcs.Booking.Create(c.Request.Context(), actor, in)
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(res)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, res)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  domain.Booking
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Security BearerAuth
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Get(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, b, "private, no-cache", true)
	}
}

// @Summary  Booking status history
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {array}  domain.StatusUpdate
// @Security BearerAuth
// @Router   /bookings/{id}/history [get]
func handleBookingHistory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		updates, err := svcs.Booking.History(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, updates, "private, no-cache", true)
	}
}

// @Summary  Download invoice
// @Param    id  path  string  true  "Booking ID"
// @Produce  application/pdf
// @Success  200  {file}  binary
// @Security BearerAuth
// @Router   /bookings/{id}/invoice [get]
func handleBookingInvoice(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		pdf, name, err := svcs.Booking.Invoice(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

// @Summary  Verify payment signature
// @Param    id  path  string  true  "Booking ID"
// @Param    req body  VerifyPaymentRequest true "checkout result"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse "INVALID_SIGNATURE"
// @Security BearerAuth
// @Router   /bookings/{id}/payment/verify [post]
func handleVerifyPayment(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.VerifyPayment(c.Request.Context(), actorFrom(c), id, booking.PaymentProof{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Accept booking (pandit)
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Security BearerAuth
// @Router   /bookings/{id}/accept [patch]
func handleAccept(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		b, err := svcs.Booking.Accept(c.Request.Context(), actorFrom(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Reject booking (pandit)
// @Param    id  path  string  true  "Booking ID"
// @Param    req body  ReasonRequest false "reason"
// @Success  200  {object}  domain.Booking
// @Security BearerAuth
// @Router   /bookings/{id}/reject [patch]
func handleReject(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ReasonRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}
		b, err := svcs.Booking.Reject(c.Request.Context(), actorFrom(c), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Report progress (pandit)
// @Param    id  path  string  true  "Booking ID"
// @Param    req body  StatusUpdateRequest true "next checkpoint"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse "INVALID_TRANSITION"
// @Security BearerAuth
// @Router   /bookings/{id}/status-update [post]
func handleStatusUpdate(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.UpdateProgress(c.Request.Context(), actorFrom(c), id, booking.ProgressRequest{
			Status: domain.Status(req.Status),
			Note:   req.Note,
			Lat:    req.Latitude,
			Lng:    req.Longitude,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Cancel booking
// @Param    id  path  string  true  "Booking ID"
// @Param    req body  ReasonRequest false "reason"
// @Success  200  {object}  booking.CancelResult
// @Failure  400  {object}  ErrorResponse "CANCELLATION_NOT_ALLOWED"
// @Security BearerAuth
// @Router   /bookings/{id}/cancel [post]
func handleCancel(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		var req ReasonRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}
		res, err := svcs.Booking.Cancel(c.Request.Context(), actorFrom(c), id, req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
