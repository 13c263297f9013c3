package dataservice

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pkg/promutil"
)

type readerMetrics struct {
	elements      prometheus.Counter
	outstanding   prometheus.Gauge
	tasks         prometheus.Gauge
	refreshErrors prometheus.Counter
	skips         prometheus.Counter
}

func newReaderMetrics(datasetID model.DatasetID, jobName string, readerID string) *readerMetrics {
	f := promutil.NewFactory4Reader(strconv.FormatInt(int64(datasetID), 10), jobName, readerID)
	return &readerMetrics{
		elements: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reader",
			Name:      "elements_total",
			Help:      "Number of elements delivered by the reader.",
		}),
		outstanding: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "reader",
			Name:      "outstanding_requests",
			Help:      "Number of element requests in flight or buffered.",
		}),
		tasks: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "reader",
			Name:      "tasks",
			Help:      "Number of tasks the reader reads from.",
		}),
		refreshErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reader",
			Name:      "task_refresh_errors_total",
			Help:      "Number of failed task list refreshes that were retried.",
		}),
		skips: f.NewCounter(prometheus.CounterOpts{
			Namespace: "reader",
			Name:      "skipped_requests_total",
			Help:      "Number of element requests answered with a skip.",
		}),
	}
}

func unregisterReaderMetrics(readerID string) {
	promutil.UnregisterReader(readerID)
}
