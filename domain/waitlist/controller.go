package waitlist

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/Nathankoth/waitlist-main-second/config/router"
	"github.com/Nathankoth/waitlist-main-second/internal/log"
	apperrors "github.com/Nathankoth/waitlist-main-second/pkg/errors"
	"github.com/Nathankoth/waitlist-main-second/pkg/ratelimit"
	"gorm.io/gorm"
)

// ControllerConfig carries the startup-validated pieces the controller needs
// beyond its service dependencies.
type ControllerConfig struct {
	Rules      Rules
	Dispatcher SignupDispatcher
	AdminToken string
}

// NewWaitlistController mounts the public join endpoint and the token-gated
// admin read endpoints under /api/waitlist.
func NewWaitlistController(db *gorm.DB, logger *log.Logger, cfg *ControllerConfig) *router.RESTController {
	return router.NewVersionedRESTController(
		"WaitlistController",
		"api",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			repository := NewWaitlistRepository(db)
			service := NewWaitlistService(logger, cfg.Rules, repository, cfg.Dispatcher)

			joinLimiter := createJoinRateLimiter()
			adminOnly := adminTokenMiddleware(cfg.AdminToken)

			rs.AddPostHandler(c, joinLimiter, "", joinWaitlistHandler(service))
			rs.AddGetHandler(c, nil, "", listWaitlistEntriesHandler(service), adminOnly)
			rs.AddGetHandler(c, nil, "/:id", getWaitlistEntryHandler(service), adminOnly)
		},
	)
}

func createJoinRateLimiter() ratelimit.RateLimiter {
	// Tighter than the global default: one browser fills this form once.
	const joinRequestsPerMinute = 30

	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: joinRequestsPerMinute,
		Window:   time.Minute,
	})
}

func joinWaitlistHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req JoinWaitlistRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind request", "error", err)

			validationErrors := apperrors.FormatValidationErrors(err, &req)
			if len(validationErrors) > 0 {
				return router.BadRequestResult("Invalid request payload", validationErrors)
			}

			return router.BadRequestResult("Invalid request body", nil)
		}

		response, err := service.JoinWaitlist(ctx.Request.Context(), &req)
		if err != nil {
			switch apperrors.GetErrorType(err) {
			case apperrors.ErrorTypeConflict:
				// The public contract reports a duplicate as 400,
				// distinguishable by message rather than status code.
				return router.BadRequestResult("Email already registered", nil)
			case apperrors.ErrorTypeInvalidRequest:
				return router.BadRequestResult(apperrors.GetHumanReadableMessage(err), nil)
			default:
				logger.Error("Waitlist signup failed", "error", err)
				return router.InternalServerErrorResult("Failed to join waitlist")
			}
		}

		return router.SubmissionAcceptedResult(response.ID, "Successfully joined the waitlist")
	}
}

func listWaitlistEntriesHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		entries, count, err := service.ListEntries(ctx.Request.Context())
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		result := router.OKResult(entries, "Waitlist entries retrieved successfully")
		result.Fields = map[string]any{"count": count}
		return result
	}
}

func getWaitlistEntryHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.FindEntryByID(ctx.Request.Context(), id)
		if err != nil {
			return router.ErrorResult(
				apperrors.HTTPStatusCode(err),
				apperrors.GetHumanReadableMessage(err),
				nil,
			)
		}

		return router.OKResult(response, "Waitlist entry retrieved successfully")
	}
}

// adminTokenMiddleware guards the read endpoints. The waitlist export is
// operator tooling, not a public surface; an unconfigured token rejects
// every request with the same body as a bad token.
func adminTokenMiddleware(token string) router.MiddlewareFunc {
	return func(c *router.RequestContext) {
		provided := c.GetHeader("X-Admin-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, router.UnauthorizedResult("Invalid admin token").ToJSON())
			return
		}

		c.Next()
	}
}
