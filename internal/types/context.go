package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID  ContextKey = "ctx_request_id"
	CtxEmployeeID ContextKey = "ctx_employee_id"
)

const (
	HeaderRequestID    = "X-Request-ID"
	HeaderEmployeeID   = "X-Employee-ID"
	HeaderEmployeeName = "X-Employee-Name"
)

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetEmployeeID(ctx context.Context) string {
	if employeeID, ok := ctx.Value(CtxEmployeeID).(string); ok {
		return employeeID
	}
	return ""
}
