package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorIDKey is the key used to store the acting identity in the Gin context.
const actorIDKey = contextKey("actorID")

// ActorHeader names the header carrying the actor identity. Authentication
// lives upstream; by the time a request reaches the posting engine the actor
// is an opaque, already-verified UUID.
const ActorHeader = "X-Actor-ID"

// ActorMiddleware requires a valid actor UUID on every mutating request so
// each posting and reversal is attributable.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		actorID := c.GetHeader(ActorHeader)
		if _, err := uuid.Parse(actorID); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid " + ActorHeader + " header"})
			return
		}
		c.Set(string(actorIDKey), actorID)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the actor ID from the Gin context.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorIDKey))
	if !exists {
		return "", false
	}
	actorID, ok := actorVal.(string)
	if !ok {
		return "", false
	}
	return actorID, true
}
