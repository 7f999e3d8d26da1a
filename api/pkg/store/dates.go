package store

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// dateMinusDays subtracts days calendar days from date (YYYY-MM-DD) and
// returns the result in the same format.
func dateMinusDays(date string, days int) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, -days).Format(dateLayout), nil
}
