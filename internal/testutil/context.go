package testutil

import (
	"context"

	"github.com/rentstack/rentstack/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = context.WithValue(ctx, types.CtxEmployeeID, "emp_test")
	return ctx
}
