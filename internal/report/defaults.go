package report

import "strings"

// DefaultLabels builds low-cardinality labels for Summary.
func DefaultLabels(component, runID string) Labels {
	ls := Labels{}
	if c := strings.TrimSpace(component); c != "" {
		ls["component"] = c
	}
	if r := strings.TrimSpace(runID); r != "" {
		ls["run_id"] = r
	}
	return ls
}

// DefaultMeta builds report-only metadata.
func DefaultMeta(method, component, runID string, enabled bool) SessionMeta {
	return SessionMeta{
		Method:    method,
		Component: component,
		RunID:     runID,
		Enabled:   enabled,
	}
}
