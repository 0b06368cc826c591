// Package metrics exposes Prometheus instrumentation for the import
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ImportMetrics counts the life of a file through parse, preview and
// persistence.
type ImportMetrics struct {
	FilesParsed       *prometheus.CounterVec
	RowsExtracted     prometheus.Counter
	RowsSkipped       prometheus.Counter
	RowsImported      prometheus.Counter
	RowsFailed        prometheus.Counter
	RegistryFallbacks prometheus.Counter
	ParseDuration     prometheus.Histogram
	PreviewsActive    prometheus.Gauge
}

// NewImportMetrics registers the import metric set on reg.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	factory := promauto.With(reg)
	return &ImportMetrics{
		FilesParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "import_files_parsed_total",
			Help: "Files successfully parsed, by container format.",
		}, []string{"format"}),
		RowsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "import_rows_extracted_total",
			Help: "Rows that survived extraction and validation.",
		}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "import_rows_skipped_total",
			Help: "Rows dropped during extraction.",
		}),
		RowsImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "import_rows_imported_total",
			Help: "Rows persisted successfully.",
		}),
		RowsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "import_rows_failed_total",
			Help: "Rows that failed at the persistence step.",
		}),
		RegistryFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "import_registry_fallbacks_total",
			Help: "Labels that fell back to the first registry entry.",
		}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "import_parse_duration_seconds",
			Help:    "Wall time spent parsing one file.",
			Buckets: prometheus.DefBuckets,
		}),
		PreviewsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "import_previews_active",
			Help: "Preview sessions currently held in memory.",
		}),
	}
}
