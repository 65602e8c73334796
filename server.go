package main

import (
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"varbrowser/api/contexts"
	gam "varbrowser/api/middleware"
	"varbrowser/api/models"
	"varbrowser/api/models/constants/dataset"
	patientsMvc "varbrowser/api/mvc/patients"
	serviceInfoMvc "varbrowser/api/mvc/service-info"
	variantsMvc "varbrowser/api/mvc/variants"
	"varbrowser/api/observability"
	"varbrowser/api/repositories"
	"varbrowser/api/services/cache"
	patientsService "varbrowser/api/services/patients"
	variantsService "varbrowser/api/services/variants"
)

type serverDeps struct {
	Config     *models.Config
	Repository repositories.Repository
	Cache      cache.ResultCache
	Metrics    *observability.Metrics
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

func newServer(deps serverDeps) *echo.Echo {
	// Instantiate Server
	e := echo.New()
	e.HideBanner = true

	ps := patientsService.NewPatientService(deps.Cache, deps.Metrics)
	ps.SetLogger(deps.Logger.Named("patients"))
	vs := variantsService.NewVariantService(deps.Repository)
	vs.SetLogger(deps.Logger.Named("variants"))

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET},
	}))
	if deps.Config.Debug {
		e.Use(middleware.Logger())
	}

	// -- Override handlers with "custom" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.VarbrowserContext{
				Context:        c,
				Config:         deps.Config,
				ZapLogger:      deps.Logger,
				Metrics:        deps.Metrics,
				Repository:     deps.Repository,
				PatientService: ps,
				VariantService: vs,
			}
			return h(cc)
		}
	})

	// Global Middleware
	e.Use(gam.AttachRequestId)

	// Begin MVC Routes
	// -- Root
	e.GET("/", serviceInfoMvc.GetWelcome)

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	// -- Patients
	e.GET("/variants/:dataset/patients", patientsMvc.GetPatients,
		// middleware
		gam.MandateDatasetPathParam,
		gam.ParsePatientsQueryParams)

	// legacy names
	e.GET("/get_patients", patientsMvc.GetPatients,
		// middleware
		gam.UseDataset(dataset.ShortRead),
		gam.ParsePatientsQueryParams)
	e.GET("/get_patients_longread_ajax", patientsMvc.GetPatients,
		// middleware
		gam.UseDataset(dataset.LongRead),
		gam.ParsePatientsQueryParams)

	// -- Variants
	e.GET("/variants/detail", variantsMvc.GetVariantDetail)
	e.GET("/variant_detail", variantsMvc.GetVariantDetail)

	return e
}
