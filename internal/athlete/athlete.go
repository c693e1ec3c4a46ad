// Package athlete exposes the marathon world-rankings read model the draft
// UI picks from. Rows are maintained out-of-band by the rankings sync
// tooling; this package only reads them.
package athlete

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidGender = errors.New("athlete.invalid_gender")

// Athlete is one ranked marathon runner.
type Athlete struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Country         string `json:"country"`
	Gender          string `json:"gender"`
	WorldAthleticsID string `json:"wa_id,omitempty"`
	MarathonRank    int    `json:"marathon_rank"`
	OverallRank     int    `json:"overall_rank,omitempty"`
	MarathonTime    string `json:"marathon_time,omitempty"`
}

const (
	GenderMen   = "men"
	GenderWomen = "women"

	defaultLimit = 100
	maxLimit     = 500
)

// Store reads athlete rankings.
type Store interface {
	// List returns athletes of one gender ordered by marathon rank.
	List(ctx context.Context, gender string, limit int) ([]Athlete, error)
}

// NormalizeQuery validates the gender filter and clamps the limit.
func NormalizeQuery(gender string, limit int) (string, int, error) {
	switch gender {
	case GenderMen, GenderWomen:
	default:
		return "", 0, fmt.Errorf("%w: %q (want men or women)", ErrInvalidGender, gender)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return gender, limit, nil
}
