package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"varbrowser/api/contexts"
)

const requestIdHeader = "X-Request-Id"

/*
Echo middleware tagging every request with an id, echoed back in the
response headers and attached to the request's logger
*/
func AttachRequestId(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VarbrowserContext)

		id := c.Request().Header.Get(requestIdHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		gc.RequestId = id
		gc.ZapLogger = gc.ZapLogger.With(zap.String("requestId", id))
		c.Response().Header().Set(requestIdHeader, id)

		return next(gc)
	}
}
