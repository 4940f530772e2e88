package handlers

import (
	"net/http"

	"github.com/arabian-ops/login-project/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Every response, success or failure, carries the same envelope:
// {"success": bool, "message": ..., ...payload}.

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success":   false,
		"message":   message,
		"requestId": requestIDFrom(ctx),
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	body := gin.H{
		"success":   false,
		"message":   message,
		"requestId": requestIDFrom(ctx),
	}

	if details != nil {
		body["details"] = details
	}

	ctx.JSON(http.StatusBadRequest, body)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

// RespondInternal keeps the generic message but surfaces the underlying
// error text, matching the rest of the API's failure shape.
func RespondInternal(ctx *gin.Context, err error) {
	body := gin.H{
		"success":   false,
		"message":   "Server error",
		"requestId": requestIDFrom(ctx),
	}

	if err != nil {
		body["error"] = err.Error()
	}

	ctx.JSON(http.StatusInternalServerError, body)
}
