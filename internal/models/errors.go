package models

import "errors"

// Pipeline error taxonomy. Only ErrDataUnavailable aborts a whole run;
// every other condition is absorbed at section granularity.
var (
	// ErrDataUnavailable means no DataSet could be obtained at all.
	ErrDataUnavailable = errors.New("dataset unavailable")

	// ErrSectionDataMissing means one section's data slice is entirely
	// absent; the section is marked Failed and the run continues.
	ErrSectionDataMissing = errors.New("section data missing")
)
