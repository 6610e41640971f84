package middleware

import (
	"errors"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/repository"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const actorKey = "actor"

// ActorMiddleware resolves the authenticated user into an authz.Actor, attaching
// the id of the profile the user owns for its role. Must run after AuthMiddleware.
func ActorMiddleware(directory repository.DirectoryRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromContext(c)
		role, roleOK := GetUserRoleFromContext(c)
		if !ok || !roleOK {
			utils.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		actor := authz.Actor{UserID: userID, Role: role}
		if role != models.RoleAdmin {
			profileID, err := directory.ProfileID(c.Request.Context(), role, userID)
			switch {
			case err == nil:
			case errors.Is(err, repository.ErrNotFound):
				// Accounts without a profile keep only role-level permissions.
			default:
				logger.Error("resolve actor profile", zap.String("user_id", userID), zap.Error(err))
				utils.InternalServerError(c, "Failed to resolve user profile")
				c.Abort()
				return
			}
			switch role {
			case models.RolePatient:
				actor.PatientID = profileID
			case models.RoleDoctor:
				actor.DoctorID = profileID
			case models.RoleReceptionist:
				actor.ReceptionistID = profileID
			}
		}

		SetActor(c, actor)
		c.Next()
	}
}

// SetActor stores actor in the request context.
func SetActor(c *gin.Context, actor authz.Actor) {
	c.Set(actorKey, actor)
}

// GetActorFromContext returns the actor stored by ActorMiddleware.
func GetActorFromContext(c *gin.Context) (authz.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return authz.Actor{}, false
	}
	actor, ok := v.(authz.Actor)
	return actor, ok
}

// Authorize aborts with 403 unless the actor may perform action.
func Authorize(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActorFromContext(c)
		if !ok {
			utils.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}
		if !actor.Can(action) {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}
