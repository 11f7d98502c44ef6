package report

import (
	"strings"
	"time"

	"water-delivery/internal/apperr"
	"water-delivery/internal/models"
)

// StatusAll disables the status filter of a report
const StatusAll = "ALL"

const dateLayout = "2006-01-02"

// Range is a closed creation-time interval. Nil bounds are open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// ParseRange turns inclusive calendar days into the closed interval
// [start 00:00:00, end 23:59:59.999999] in loc. Either day may be blank.
func ParseRange(start, end string, loc *time.Location) (Range, error) {
	var rng Range

	if start = strings.TrimSpace(start); start != "" {
		day, err := time.ParseInLocation(dateLayout, start, loc)
		if err != nil {
			return Range{}, apperr.Validation("start", "start must be a date in YYYY-MM-DD format")
		}
		rng.From = &day
	}

	if end = strings.TrimSpace(end); end != "" {
		day, err := time.ParseInLocation(dateLayout, end, loc)
		if err != nil {
			return Range{}, apperr.Validation("end", "end must be a date in YYYY-MM-DD format")
		}
		last := day.AddDate(0, 0, 1).Add(-time.Microsecond)
		rng.To = &last
	}

	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return Range{}, apperr.Validation("end", "end must not be before start")
	}
	return rng, nil
}

// StatusFilter selects the orders a report counts. The zero value means all
// statuses.
type StatusFilter struct {
	Status models.OrderStatus
}

// Matches reports whether an order with status s passes the filter
func (f StatusFilter) Matches(s models.OrderStatus) bool {
	return f.Status == "" || f.Status == s
}

func (f StatusFilter) String() string {
	if f.Status == "" {
		return StatusAll
	}
	return string(f.Status)
}

// ParseStatusFilter reads a status filter. Blank input yields fallback and
// ALL disables filtering.
func ParseStatusFilter(raw string, fallback StatusFilter) (StatusFilter, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	switch raw {
	case "":
		return fallback, nil
	case StatusAll:
		return StatusFilter{}, nil
	}

	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		d, _ := apperr.Details(err)
		allowed := append([]string{StatusAll}, d.Allowed...)
		return StatusFilter{}, apperr.InvalidValue("status", "unknown status filter", allowed)
	}
	return StatusFilter{Status: status}, nil
}
