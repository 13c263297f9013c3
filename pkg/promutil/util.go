package promutil

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	systemID = "system"
	// metricPrefix is the namespace prefix of every reader metric
	metricPrefix = "dataservice"
)

const (
	constLabelDatasetKey = "dataset_id"
	constLabelJobKey     = "job_name"
	constLabelReaderKey  = "reader_id"
)

// HTTPHandlerForMetric return http.Handler for prometheus metric
func HTTPHandlerForMetric() http.Handler {
	return promhttp.HandlerFor(
		globalMetricRegistry,
		promhttp.HandlerOpts{},
	)
}

// NewFactory4Reader return a Factory producing metrics labeled with the
// dataset, job and reader. jobName is empty for anonymous jobs.
func NewFactory4Reader(datasetID string, jobName string, readerID string) Factory {
	return newFactory4Reader(globalMetricRegistry, datasetID, jobName, readerID)
}

func newFactory4Reader(r *Registry, datasetID string, jobName string, readerID string) Factory {
	return &wrappingFactory{
		r:      r,
		id:     readerID,
		prefix: metricPrefix,
		constLabels: prometheus.Labels{
			constLabelDatasetKey: datasetID,
			constLabelJobKey:     jobName,
			constLabelReaderKey:  readerID,
		},
	}
}

// UnregisterReader unregisters all metrics created by the factory of
// readerID.
func UnregisterReader(readerID string) {
	globalMetricRegistry.Unregister(readerID)
}
