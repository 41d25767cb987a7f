// Package logging provides a small chainable structured-logging field
// builder shared by every component in the query pipeline, plus a set
// of per-subsystem constructors for the field combinations each
// component logs most often.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Fields is a chainable builder over the map logrus expects.
type Fields map[string]interface{}

// NewFields starts an empty field set.
func NewFields() Fields {
	return Fields{}
}

func (f Fields) Component(name string) Fields {
	f["component"] = name
	return f
}

func (f Fields) Operation(name string) Fields {
	f["operation"] = name
	return f
}

func (f Fields) Resource(resourceType, name string) Fields {
	f["resource_type"] = resourceType
	if name != "" {
		f["resource_name"] = name
	}
	return f
}

func (f Fields) Duration(d time.Duration) Fields {
	f["duration_ms"] = d.Milliseconds()
	return f
}

func (f Fields) Error(err error) Fields {
	if err != nil {
		f["error"] = err.Error()
	}
	return f
}

func (f Fields) UserID(id string) Fields {
	if id != "" {
		f["user_id"] = id
	}
	return f
}

func (f Fields) RequestID(id string) Fields {
	if id != "" {
		f["request_id"] = id
	}
	return f
}

func (f Fields) TraceID(id string) Fields {
	if id != "" {
		f["trace_id"] = id
	}
	return f
}

func (f Fields) StatusCode(code int) Fields {
	f["status_code"] = code
	return f
}

func (f Fields) Method(method string) Fields {
	f["method"] = method
	return f
}

func (f Fields) URL(url string) Fields {
	f["url"] = url
	return f
}

func (f Fields) Count(n int) Fields {
	f["count"] = n
	return f
}

func (f Fields) Size(bytes int64) Fields {
	f["size_bytes"] = bytes
	return f
}

func (f Fields) Version(v string) Fields {
	f["version"] = v
	return f
}

func (f Fields) Custom(key string, value interface{}) Fields {
	f[key] = value
	return f
}

// ToLogrus converts to logrus.Fields for use with logrus.WithFields.
func (f Fields) ToLogrus() logrus.Fields {
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// DatabaseFields builds the standard field set for a store operation.
func DatabaseFields(operation, table string) Fields {
	return NewFields().Component("database").Operation(operation).Resource("table", table)
}

// HTTPFields builds the standard field set for an HTTP exchange.
func HTTPFields(method, url string, statusCode int) Fields {
	return NewFields().Component("http").Method(method).URL(url).StatusCode(statusCode)
}

// WorkflowFields builds the standard field set for a pipeline-stage event.
func WorkflowFields(operation, workflowID string) Fields {
	return NewFields().Component("workflow").Operation(operation).Resource("workflow", workflowID)
}

// KubernetesFields is retained for parity with the field vocabulary the
// rest of the corpus logs with; unused by this pipeline's own
// components but left available for a hosting service to adopt.
func KubernetesFields(operation, resourceType, name, namespace string) Fields {
	f := NewFields().Component("kubernetes").Operation(operation).Resource(resourceType, name)
	if namespace != "" {
		f["namespace"] = namespace
	}
	return f
}

// AIFields builds the standard field set for an LLM/embedding call.
func AIFields(operation, model string) Fields {
	f := NewFields().Component("ai").Operation(operation)
	f["model"] = model
	return f
}

// MetricsFields builds the standard field set for a metric record event.
func MetricsFields(operation, metricName string, value float64) Fields {
	f := NewFields().Component("metrics").Operation(operation)
	f["metric_name"] = metricName
	f["value"] = value
	return f
}

// SecurityFields builds the standard field set for an auth/authz event.
func SecurityFields(operation, subject string) Fields {
	f := NewFields().Component("security").Operation(operation)
	f["subject"] = subject
	return f
}

// PerformanceFields builds the standard field set for a timed operation.
func PerformanceFields(operation string, d time.Duration, success bool) Fields {
	f := NewFields().Component("performance").Operation(operation).Duration(d)
	f["success"] = success
	return f
}

// QueryFields builds the standard field set for a pipeline request.
func QueryFields(requestID, normalizedQuery string) Fields {
	f := NewFields().Component("nlquery").RequestID(requestID)
	f["normalized_query"] = normalizedQuery
	return f
}

// ExtractionFields builds the standard field set for the extraction stage.
func ExtractionFields(method string, llmUsed bool, confidence float64) Fields {
	f := NewFields().Component("extraction")
	f["method"] = method
	f["llm_used"] = llmUsed
	f["confidence"] = confidence
	return f
}

// SearchFields builds the standard field set for the search stage.
func SearchFields(resultCount int, degraded bool) Fields {
	f := NewFields().Component("search").Count(resultCount)
	f["degraded"] = degraded
	return f
}

// CacheFields builds the standard field set for an embedding-cache event.
func CacheFields(operation string, hit bool) Fields {
	f := NewFields().Component("cache").Operation(operation)
	f["hit"] = hit
	return f
}

// LLMFields builds the standard field set for a gateway provider call.
func LLMFields(provider string, attempt int, circuitState string) Fields {
	f := NewFields().Component("llm")
	f["provider"] = provider
	f["attempt"] = attempt
	f["circuit_state"] = circuitState
	return f
}
