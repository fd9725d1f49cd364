package metric

// MetricType defines the semantic type of a metric.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Descriptor holds protocol-agnostic metric metadata and a value reader.
type Descriptor struct {
	PrometheusName string
	OTELName       string
	Type           MetricType
	Description    string
	Attributes     map[string]string
	Value          func() float64
}
