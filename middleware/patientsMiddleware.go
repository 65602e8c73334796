package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo"

	"varbrowser/api/contexts"
	patientFilter "varbrowser/api/models/constants/patient-filter"
	patientsService "varbrowser/api/services/patients"
)

/*
Echo middleware parsing the patients query parameters into a request.
Malformed values fall back to their defaults rather than failing.
Must run after a dataset middleware.
*/
func ParsePatientsQueryParams(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VarbrowserContext)

		// `id` on the REST route, the dataset's own name on the legacy ones
		param := gc.Adapter.IdentityParam()
		if c.Param("dataset") != "" {
			param = "id"
		}
		gc.IdentityParam = param
		identity := c.QueryParam(param)

		page, err := strconv.Atoi(c.QueryParam("page"))
		if err != nil || page < 1 {
			page = 1
		}

		gc.PatientsRequest = patientsService.Request{
			Identity: identity,
			Page:     page,
			Filter:   patientFilter.CastToPatientFilter(c.QueryParam("filter")),
			Search:   c.QueryParam("search"),
			Preload:  strings.ToLower(c.QueryParam("preload")) == "true",
		}

		return next(gc)
	}
}
