package repository

import "time"

// TimeLayout is the fixed-width UTC layout used for created_at/updated_at columns.
// Fixed width keeps lexical and chronological order identical, which keyset pagination relies on.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// nowFunc is replaced in tests that need deterministic timestamps.
var nowFunc = time.Now

func timestamp() string {
	return nowFunc().UTC().Format(TimeLayout)
}
