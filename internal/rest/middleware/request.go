package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rentstack/rentstack/internal/types"
)

// RequestIDMiddleware threads a request ID and the acting employee through
// the request context.
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)

	if employeeID := c.GetHeader(types.HeaderEmployeeID); employeeID != "" {
		ctx = context.WithValue(ctx, types.CtxEmployeeID, employeeID)
	}

	c.Request = c.Request.WithContext(ctx)

	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
