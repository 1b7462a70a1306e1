package prompt

import (
	"simview/internal/logging"
	"simview/internal/metrics"
)

// Section is one independently rendered part of an artifact: either its
// rendered text or, when its data was unavailable, a neutral placeholder.
type Section struct {
	Name     string
	Text     string
	Degraded bool
	Err      error // cause of the degradation, if any
}

// Rendered wraps successfully rendered text.
func Rendered(name, text string) Section { return Section{Name: name, Text: text} }

// Degrade substitutes placeholder for a section whose data could not be read.
// The cause is logged and counted; it never reaches the caller as an error.
func Degrade(name, placeholder string, err error) Section {
	metrics.IncDegraded(name)
	fields := map[string]any{"section": name}
	if err != nil {
		fields["error"] = err.Error()
	}
	logging.Warn("section_degraded", fields)
	return Section{Name: name, Text: placeholder, Degraded: true, Err: err}
}
