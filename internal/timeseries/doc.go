// Package timeseries provides the date-indexed series model used by the
// analysis engine: ordered observations with strictly increasing timestamps,
// an explicit missing-value marker, calendar frequency detection, and
// exclusion-interval filtering.
package timeseries
