package serviceInfo

import (
	"net/http"

	"github.com/labstack/echo"

	"varbrowser/api/contexts"
	"varbrowser/api/models/constants/dataset"
	serviceInfo "varbrowser/api/models/constants/service-info"
)

func GetWelcome(c echo.Context) error {
	return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
}

// GA4GH service-info: https://github.com/ga4gh-discovery/ga4gh-service-info
func GetServiceInfo(c echo.Context) error {
	cfg := c.(*contexts.VarbrowserContext).Config

	return c.JSON(http.StatusOK, map[string]interface{}{
		"type": map[string]interface{}{
			"artifact": serviceInfo.SERVICE_ARTIFACT,
			"group":    serviceInfo.SERVICE_TYPE_NO_VER,
			"version":  cfg.Api.SemVer,
		},
		"id":          serviceInfo.SERVICE_ID,
		"name":        serviceInfo.SERVICE_NAME,
		"description": serviceInfo.SERVICE_DESCRIPTION,
		"datasets":    dataset.All,
		"storage":     cfg.Store.Backend,
		"contactUrl":  cfg.Api.ServiceContact,
		"version":     cfg.Api.SemVer,
	})
}
