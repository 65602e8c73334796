package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"varbrowser/api/contexts"
	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/dtos/errors"
	"varbrowser/api/services/datasets"
)

/*
Echo middleware to ensure a valid `dataset` path parameter was provided
*/
func MandateDatasetPathParam(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VarbrowserContext)

		ds := c.Param("dataset")
		if !dataset.IsKnown(ds) {
			gc.ZapLogger.Info("invalid dataset", zap.String("dataset", ds))
			return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(
				fmt.Sprintf("invalid dataset %s - please provide one of %v", ds, dataset.All),
			))
		}

		// forward a type-safe value down the pipeline
		gc.Adapter, _ = datasets.ForDataset(dataset.CastToDataset(ds), gc.Repository)

		return next(gc)
	}
}

/*
Echo middleware pinning a route to one dataset
*/
func UseDataset(ds constants.Dataset) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			gc := c.(*contexts.VarbrowserContext)

			adapter, ok := datasets.ForDataset(ds, gc.Repository)
			if !ok {
				return fmt.Errorf("no adapter for dataset %s", ds)
			}
			gc.Adapter = adapter

			return next(gc)
		}
	}
}
