package httpgin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/service"
	"github.com/kirinyoku/dakshina/internal/service/booking"
)

type queueFunc func(ctx context.Context, p repository.Page) ([]domain.Booking, error)

func listQueue(list queueFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := pageFrom(c)
		items, err := list(c.Request.Context(), p)
		if err != nil {
			respondErr(c, err)
			return
		}
		if items == nil {
			items = []domain.Booking{}
		}
		c.JSON(http.StatusOK, ListResponse{Items: items, Limit: p.Limit, Offset: p.Offset})
	}
}

// @Summary  Bookings awaiting travel arrangements
// @Param    limit   query  int  false  "page size"
// @Param    offset  query  int  false  "offset"
// @Success  200  {object}  ListResponse
// @Security BearerAuth
// @Router   /admin/travel-queue [get]
func handleTravelQueue(svcs *service.Services) gin.HandlerFunc {
	return listQueue(svcs.Admin.TravelQueue)
}

// @Summary  Pending cancellation requests
// @Param    limit   query  int  false  "page size"
// @Param    offset  query  int  false  "offset"
// @Success  200  {object}  ListResponse
// @Security BearerAuth
// @Router   /admin/cancellations [get]
func handleCancellationQueue(svcs *service.Services) gin.HandlerFunc {
	return listQueue(svcs.Admin.CancellationQueue)
}

// @Summary  Completed bookings awaiting payout
// @Param    limit   query  int  false  "page size"
// @Param    offset  query  int  false  "offset"
// @Success  200  {object}  ListResponse
// @Security BearerAuth
// @Router   /admin/payouts [get]
func handlePendingPayouts(svcs *service.Services) gin.HandlerFunc {
	return listQueue(svcs.Admin.PendingPayouts)
}

// @Summary  Update travel arrangement
// @Param    bookingId  path  string  true  "Booking ID"
// @Param    req body  TravelUpdateRequest true "travel status"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse
// @Security BearerAuth
// @Router   /admin/travel/{bookingId} [patch]
func handleUpdateTravel(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "bookingId")
		if !ok {
			return
		}
		var req TravelUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.UpdateTravel(c.Request.Context(), actorFrom(c), id, booking.TravelUpdate{
			Status:  domain.TravelStatus(req.Status),
			Details: req.Details,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Decide a cancellation request
// @Param    bookingId  path  string  true  "Booking ID"
// @Param    req body  CancellationDecisionRequest true "APPROVE, PARTIAL or REJECT"
// @Success  200  {object}  booking.DecisionResult
// @Failure  400  {object}  ErrorResponse
// @Security BearerAuth
// @Router   /admin/cancellations/{bookingId} [patch]
func handleProcessCancellation(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "bookingId")
		if !ok {
			return
		}
		var req CancellationDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, err := svcs.Booking.ProcessCancellation(c.Request.Context(), actorFrom(c), id, booking.Decision{
			Action:       booking.Action(req.Action),
			RefundAmount: req.RefundAmount,
			Note:         req.Note,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary  Record pandit payout
// @Param    bookingId  path  string  true  "Booking ID"
// @Param    req body  PayoutRequest true "bank reference"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse "ALREADY_PAID / NOT_PAYOUT_ELIGIBLE"
// @Security BearerAuth
// @Router   /admin/payouts/{bookingId} [patch]
func handleMarkPayout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "bookingId")
		if !ok {
			return
		}
		var req PayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Admin.MarkPayout(c.Request.Context(), id, req.Reference)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Settle a refund
// @Param    bookingId  path  string  true  "Booking ID"
// @Param    req body  RefundSettleRequest true "outcome"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse "REFUND_ALREADY_SETTLED"
// @Security BearerAuth
// @Router   /admin/refunds/{bookingId} [patch]
func handleSettleRefund(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "bookingId")
		if !ok {
			return
		}
		var req RefundSettleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Admin.SettleRefund(c.Request.Context(), id, domain.RefundStatus(req.Status), req.Reference)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Assign a pandit
// @Param    bookingId  path  string  true  "Booking ID"
// @Param    req body  AssignPanditRequest true "pandit"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse "PANDIT_UNAVAILABLE / DATE_UNAVAILABLE"
// @Security BearerAuth
// @Router   /admin/bookings/{bookingId}/assign [patch]
func handleAssignPandit(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "bookingId")
		if !ok {
			return
		}
		var req AssignPanditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.AssignPandit(c.Request.Context(), actorFrom(c), id, uuid.MustParse(req.PanditID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
