package services

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrRangeFromDateInvalid = errors.New("invalid from date")
	ErrRangeToDateInvalid   = errors.New("invalid to date")
	ErrRangeInvalid         = errors.New("invalid range")
)

// ParseDateRange parses optional inclusive calendar bounds.
func ParseDateRange(rawFrom string, rawTo string) (*time.Time, *time.Time, error) {
	var from *time.Time
	if strings.TrimSpace(rawFrom) != "" {
		parsed, err := ParseCalendarDate("from date", rawFrom)
		if err != nil {
			return nil, nil, ErrRangeFromDateInvalid
		}
		from = &parsed
	}

	var to *time.Time
	if strings.TrimSpace(rawTo) != "" {
		parsed, err := ParseCalendarDate("to date", rawTo)
		if err != nil {
			return nil, nil, ErrRangeToDateInvalid
		}
		to = &parsed
	}

	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, ErrRangeInvalid
	}
	return from, to, nil
}
