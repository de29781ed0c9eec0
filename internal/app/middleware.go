package app

import (
	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/middleware"
)

type Middleware struct {
	RequestLog *middleware.RequestLogMiddleware
}

func wireMiddleware(log *logger.Logger) Middleware {
	return Middleware{
		RequestLog: middleware.NewRequestLogMiddleware(log),
	}
}
