package httpgin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/domain"
	"github.com/kirinyoku/dakshina/internal/pricing"
	"github.com/kirinyoku/dakshina/internal/repository"
	redisrepo "github.com/kirinyoku/dakshina/internal/repository/redis"
	"github.com/kirinyoku/dakshina/internal/service"
	travelsvc "github.com/kirinyoku/dakshina/internal/service/travel"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	jwtSecret []byte,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/bookings/calculate-fees", handleCalculateFees(svcs))
	r.POST("/travel/calculate", handleTravelCalculate(svcs))

	authed := r.Group("/", AuthMiddleware(jwtSecret))
	{
		authed.POST("/bookings", RequireRole(domain.RoleCustomer), handleCreateBooking(svcs, idem))
		authed.GET("/bookings/:id", handleGetBooking(svcs))
		authed.GET("/bookings/:id/history", handleBookingHistory(svcs))
		authed.GET("/bookings/:id/invoice", handleBookingInvoice(svcs))
		authed.POST("/bookings/:id/payment/verify", RequireRole(domain.RoleCustomer), handleVerifyPayment(svcs))
		authed.PATCH("/bookings/:id/accept", RequireRole(domain.RolePandit), handleAccept(svcs))
		authed.PATCH("/bookings/:id/reject", RequireRole(domain.RolePandit), handleReject(svcs))
		authed.POST("/bookings/:id/status-update", RequireRole(domain.RolePandit), handleStatusUpdate(svcs))
		authed.POST("/bookings/:id/cancel", RequireRole(domain.RoleCustomer, domain.RoleAdmin), handleCancel(svcs))
	}

	// Admin-API
	admin := r.Group("/admin", AuthMiddleware(jwtSecret), RequireRole(domain.RoleAdmin))
	{
		admin.GET("/travel-queue", handleTravelQueue(svcs))
		admin.PATCH("/travel/:bookingId", handleUpdateTravel(svcs))
		admin.GET("/cancellations", handleCancellationQueue(svcs))
		admin.PATCH("/cancellations/:bookingId", handleProcessCancellation(svcs))
		admin.GET("/payouts", handlePendingPayouts(svcs))
		admin.PATCH("/payouts/:bookingId", handleMarkPayout(svcs))
		admin.PATCH("/refunds/:bookingId", handleSettleRefund(svcs))
		admin.PATCH("/bookings/:bookingId/assign", handleAssignPandit(svcs))
	}

	return r
}

// @Summary  Calculate booking fees
// @Param    req body  CalculateFeesRequest true "amounts in rupees"
// @Success  200  {object}  domain.Charges
// @Failure  400  {object}  ErrorResponse
// @Router   /bookings/calculate-fees [post]
func handleCalculateFees(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CalculateFeesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		charges, err := svcs.Booking.CalculateFees(pricing.Input{
			DakshinaAmount:      req.DakshinaAmount,
			TravelCost:          req.TravelCost,
			FoodAllowanceAmount: req.FoodAllowanceAmount,
			AccommodationCost:   req.AccommodationCost,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, charges)
	}
}

// @Summary  Compare travel options
// @Param    req body  TravelCalculateRequest true "route"
// @Success  200  {object}  TravelCalculateResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse "no distance data"
// @Router   /travel/calculate [post]
func handleTravelCalculate(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TravelCalculateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		q := travelsvc.QuoteRequest{
			FromCity:  req.FromCity,
			ToCity:    req.ToCity,
			Mode:      domain.TravelMode(req.TravelMode),
			EventDays: req.EventDays,
			Food:      domain.FoodArrangement(req.FoodArrangement),
		}
		if req.PanditID != "" {
			id := uuid.MustParse(req.PanditID)
			q.PanditID = &id
		} else if req.FromCity == "" {
			badRequest(c, "from_city or pandit_id is required")
			return
		}

		quote, err := svcs.Travel.Quote(c.Request.Context(), q)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, TravelCalculateResponse{
			DistanceKm:  quote.Distance.DistanceKm,
			DriveHours:  quote.Distance.DriveHours,
			MaxTravelKm: quote.MaxTravelKm,
			Options:     quote.Options,
		})
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func pageFrom(c *gin.Context) repository.Page {
	return repository.Page{
		Limit:  parseIntDefault(c.Query("limit"), 0),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}.Normalize()
}
