package service

import (
	"math"
	"sort"
	"strings"

	"github.com/skillswap-labs/skillswap-api/internal/dto"
	"github.com/skillswap-labs/skillswap-api/internal/models"
)

// Match quality bands. Thresholds are inclusive lower bounds.
const (
	MatchQualityExcellent = "excellent"
	MatchQualityGood      = "good"
	MatchQualityModerate  = "moderate"
	MatchQualityLow       = "low"
)

// Intersection returns the elements of a that appear in b, compared
// case-insensitively. The order of a is preserved.
func Intersection(a, b []string) []string {
	out := make([]string, 0, len(a))
	for _, item := range a {
		lower := strings.ToLower(item)
		for _, other := range b {
			if lower == strings.ToLower(other) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// CalculateMatch computes the compatibility signal between a viewer and a
// candidate profile. The percentage is the average of two ratios whose
// denominators default to 1 when a side has no learn skills; it is not
// clamped and can exceed 100.
func CalculateMatch(viewer, candidate models.User) dto.MatchData {
	youCanHelp := Intersection(viewer.Profile.TeachSkills, candidate.Profile.LearnSkills)
	theyCanHelp := Intersection(candidate.Profile.TeachSkills, viewer.Profile.LearnSkills)

	score := len(youCanHelp) + len(theyCanHelp)

	percentage := 0
	if score > 0 {
		viewerLearn := len(viewer.Profile.LearnSkills)
		if viewerLearn == 0 {
			viewerLearn = 1
		}
		candidateLearn := len(candidate.Profile.LearnSkills)
		if candidateLearn == 0 {
			candidateLearn = 1
		}

		youHelpPct := float64(len(youCanHelp)) / float64(candidateLearn) * 100
		theyHelpPct := float64(len(theyCanHelp)) / float64(viewerLearn) * 100
		percentage = int(math.Round((youHelpPct + theyHelpPct) / 2))
	}

	quality, badge := matchBand(percentage)

	return dto.MatchData{
		Score:        score,
		Percentage:   percentage,
		YouCanHelp:   youCanHelp,
		TheyCanHelp:  theyCanHelp,
		MatchQuality: quality,
		BadgeColor:   badge,
	}
}

func matchBand(percentage int) (string, string) {
	switch {
	case percentage >= 70:
		return MatchQualityExcellent, "success"
	case percentage >= 40:
		return MatchQualityGood, "warning"
	case percentage >= 20:
		return MatchQualityModerate, "info"
	default:
		return MatchQualityLow, "secondary"
	}
}

// FindTopMatches keeps only the candidates with a positive score from a
// match-ordered listing and returns at most limit entries. A non-positive
// limit falls back to 5.
func FindTopMatches(matched []dto.MatchedUser, limit int) []dto.MatchedUser {
	if limit <= 0 {
		limit = 5
	}

	top := matched[:0:0]
	for _, item := range matched {
		if item.Match.Score <= 0 {
			continue
		}
		top = append(top, item)
		if len(top) == limit {
			break
		}
	}
	return top
}

// AllUsersWithMatch scores every user except the viewer and sorts the
// result by percentage, then score, descending. The sort is stable so
// equally scored candidates keep their input order.
func AllUsersWithMatch(viewer models.User, allUsers []models.User) []dto.MatchedUser {
	matched := make([]dto.MatchedUser, 0, len(allUsers))
	for _, user := range allUsers {
		if user.ID == viewer.ID {
			continue
		}
		matched = append(matched, dto.MatchedUser{
			User:  dto.NewUserResponse(user),
			Match: CalculateMatch(viewer, user),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Match.Percentage != matched[j].Match.Percentage {
			return matched[i].Match.Percentage > matched[j].Match.Percentage
		}
		return matched[i].Match.Score > matched[j].Match.Score
	})

	return matched
}
