// Package v1 implements the v1 HTTP API.
package v1

import (
	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/ingest"
	"github.com/spendlens/backend/internal/insights"
)

// Controller holds the collaborators the request handlers need. It is
// passed to router.AttachRoutes and carries no per-request state.
type Controller struct {
	Cfg        config.Config
	Service    *ingest.Service
	Detector   *insights.Detector
	Anomalies  *insights.AnomalyDetector
	Budgets    *insights.BudgetTracker
	Payoff     *insights.PayoffPlanner
	Forecaster *insights.Forecaster
}

func NewController(cfg config.Config, service *ingest.Service) Controller {
	return Controller{
		Cfg:        cfg,
		Service:    service,
		Detector:   insights.NewDetector(cfg),
		Anomalies:  insights.NewAnomalyDetector(cfg),
		Budgets:    insights.NewBudgetTracker(cfg),
		Payoff:     insights.NewPayoffPlanner(cfg),
		Forecaster: insights.NewForecaster(cfg),
	}
}
