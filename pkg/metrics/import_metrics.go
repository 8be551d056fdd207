package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hrflow_import_runs_total",
		Help: "Number of bulk import runs processed.",
	})

	// ImportRows is labelled by terminal row outcome: added, skipped or failed.
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrflow_import_rows_total",
		Help: "Number of import rows by terminal outcome.",
	}, []string{"outcome"})

	ProvisioningFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrflow_provisioning_failures_total",
		Help: "Number of identity provider provisioning failures by step.",
	}, []string{"step"})
)
