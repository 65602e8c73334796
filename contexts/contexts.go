package contexts

import (
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"varbrowser/api/models"
	"varbrowser/api/observability"
	"varbrowser/api/repositories"
	"varbrowser/api/services/datasets"
	patientsService "varbrowser/api/services/patients"
	variantsService "varbrowser/api/services/variants"
)

type (
	// "Helper" Context to pass into routes that need
	//  the stores, services and other variables
	VarbrowserContext struct {
		echo.Context
		Config         *models.Config
		ZapLogger      *zap.Logger
		Metrics        *observability.Metrics
		Repository     repositories.Repository
		PatientService *patientsService.PatientService
		VariantService *variantsService.VariantService

		// Set by middleware
		RequestId       string
		Adapter         datasets.Adapter
		IdentityParam   string
		PatientsRequest patientsService.Request
	}
)

// the custom context must stay usable wherever echo expects its own
var _ echo.Context = (*VarbrowserContext)(nil)
