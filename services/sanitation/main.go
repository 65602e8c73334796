package sanitation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"varbrowser/api/models"
	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/observability"
	"varbrowser/api/repositories"
)

type (
	SanitationService struct {
		Initialized bool
		Config      *models.Config

		auditor   repositories.Auditor
		metrics   *observability.Metrics
		logger    *zap.Logger
		scheduler *gocron.Scheduler
	}

	// Report lists, per dataset, the (variant, patient) pairs holding more
	// than one genotype call. Such pairs are double-counted by aggregation.
	Report map[constants.Dataset][]repositories.DuplicateCall
)

func NewSanitationService(auditor repositories.Auditor, cfg *models.Config, metrics *observability.Metrics, logger *zap.Logger) *SanitationService {
	if metrics == nil {
		metrics = observability.Nop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SanitationService{
		Initialized: false,
		Config:      cfg,
		auditor:     auditor,
		metrics:     metrics,
		logger:      logger,
	}
}

// Init schedules the daily duplicate-call audit. Calling it twice is a no-op.
func (ss *SanitationService) Init() error {
	if ss.Initialized {
		return nil
	}

	// - periodically check the system is "sanitary"; for now that
	//   means reporting duplicate genotype calls, which skew the
	//   homo/hetero buckets until they are cleaned up at the source
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(1).Day().At(ss.Config.Sanitation.At).Do(func() {
		ss.logger.Info("running duplicate genotype audit")
		if _, err := ss.RunOnce(context.Background()); err != nil {
			ss.logger.Error("duplicate genotype audit failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sanitation at %q: %w", ss.Config.Sanitation.At, err)
	}

	s.StartAsync()
	ss.scheduler = s
	ss.Initialized = true
	ss.logger.Info("sanitation service initialized", zap.String("at", ss.Config.Sanitation.At))
	return nil
}

// RunOnce audits every dataset. A failing dataset does not stop the others;
// the first error is returned alongside whatever was collected.
func (ss *SanitationService) RunOnce(ctx context.Context) (Report, error) {
	report := Report{}
	var firstErr error

	for _, ds := range dataset.All {
		dups, err := ss.auditor.FindDuplicateGenotypes(ctx, ds)
		if err != nil {
			ss.logger.Error("duplicate genotype query failed", zap.String("dataset", string(ds)), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("audit %s: %w", ds, err)
			}
			continue
		}

		report[ds] = dups
		ss.metrics.DuplicateCallsFound.WithLabelValues(string(ds)).Set(float64(len(dups)))

		for _, d := range dups {
			ss.logger.Warn("duplicate genotype calls",
				zap.String("dataset", string(ds)),
				zap.String("variantKey", d.VariantKey),
				zap.String("patientId", d.PatientId),
				zap.Int64("calls", d.Count))
		}
	}
	return report, firstErr
}

func (ss *SanitationService) Stop() {
	if ss.scheduler != nil {
		ss.scheduler.Stop()
	}
}
