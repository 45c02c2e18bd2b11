package requestdata

import (
	"context"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries per-request study context. UserID is a pass-through
// key: identity management lives outside this service.
type RequestData struct {
	UserID string
}

// UserID returns the user key from ctx, or fallback when none is set.
func UserID(ctx context.Context, fallback string) string {
	if rd := GetRequestData(ctx); rd != nil && rd.UserID != "" {
		return rd.UserID
	}
	return fallback
}
