// Package game holds the pure board and scoring rules. Nothing here touches
// a store or a clock; callers pass state in and apply the results.
package game

import (
	"math"
	"time"

	"github.com/mahmoud375/peace-cake/internal/domain"
)

// Selectable returns the ids of questions the host may start, in catalog
// order. A question is selectable iff it is unused and either no question is
// in play or that question is the one in play.
func Selectable(quiz domain.Quiz, used map[string]struct{}, currentQuestionID string) []string {
	ids := make([]string, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if _, ok := used[q.ID]; ok {
			continue
		}
		if currentQuestionID != "" && currentQuestionID != q.ID {
			continue
		}
		ids = append(ids, q.ID)
	}
	return ids
}

// ValidateResolution checks a host verdict against the session's team list
// without mutating anything.
func ValidateResolution(teams []domain.Team, res domain.Resolution) error {
	if !validOutcome(res.Outcome) {
		return domain.ErrInvalidOutcome
	}
	if !hasTeam(teams, res.TeamID) {
		return domain.ErrInvalidTeam
	}
	if res.Steal == nil {
		return nil
	}
	if !validOutcome(res.Steal.Outcome) {
		return domain.ErrInvalidOutcome
	}
	if res.Steal.TeamID == res.TeamID {
		return domain.ErrSelfSteal
	}
	if !hasTeam(teams, res.Steal.TeamID) {
		return domain.ErrInvalidTeam
	}
	return nil
}

// Award computes the single score delta produced by a resolution. It returns
// the credited team id and the points earned; an empty id means no score
// change. A steal only pays out after an incorrect primary answer, at
// floor(points * factor).
func Award(points int, factor float64, res domain.Resolution) (teamID string, delta int) {
	if res.Outcome == domain.OutcomeCorrect {
		return res.TeamID, points
	}
	if res.Steal != nil && res.Steal.Outcome == domain.OutcomeCorrect {
		return res.Steal.TeamID, int(math.Floor(float64(points) * factor))
	}
	return "", 0
}

// Winners returns every team tied for the highest score. An empty team list
// yields an empty result; ties are preserved for the caller to display.
func Winners(teams []domain.Team) []domain.Team {
	if len(teams) == 0 {
		return nil
	}
	best := teams[0].Score
	for _, t := range teams[1:] {
		if t.Score > best {
			best = t.Score
		}
	}
	winners := make([]domain.Team, 0, 1)
	for _, t := range teams {
		if t.Score == best {
			winners = append(winners, t)
		}
	}
	return winners
}

// NextTurn advances the turn pointer to the following team, wrapping around.
func NextTurn(current, teamCount int) int {
	if teamCount == 0 {
		return 0
	}
	return (current + 1) % teamCount
}

// RevealDeadline is the instant the reveal timer elapses for a question
// opened at openedAt. The deadline is advisory: display stops counting, the
// engine keeps accepting host actions.
func RevealDeadline(openedAt time.Time, timerSeconds int) time.Time {
	return openedAt.Add(time.Duration(timerSeconds) * time.Second)
}

func validOutcome(o domain.Outcome) bool {
	return o == domain.OutcomeCorrect || o == domain.OutcomeIncorrect
}

func hasTeam(teams []domain.Team, id string) bool {
	for _, t := range teams {
		if t.ID == id {
			return true
		}
	}
	return false
}
