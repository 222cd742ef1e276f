package interchange

import "errors"

var (
	errMissingVersion = errors.New("project file is missing a version field")
	errBadCSVHeader   = errors.New("unexpected CSV header")
	errBadCSVRow      = errors.New("malformed CSV row")
)
