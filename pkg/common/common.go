package common

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// CommonResponse is a lightweight response wrapper used by HTTP handlers.
type CommonResponse struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg,omitempty"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// ContentHash returns the lowercase hex MD5 hash of data; it names stored media.
func ContentHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FileExt returns the lowercase extension of name including the dot.
func FileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

type contextKey string

const (
	localeKey    contextKey = "locale"
	requestIDKey contextKey = "request_id"
)

// ContextWithLocale stores the resolved site locale into context.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// GetLocale retrieves the site locale from context.
func GetLocale(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(localeKey).(string)
	return v, ok && v != ""
}

// ContextWithRequestID stores the request id into context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request id from context.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
