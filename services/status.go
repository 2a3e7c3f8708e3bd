package services

import "spotfinder/models"

const (
	ThresholdLocal  = 100
	ThresholdHero   = 500
	ThresholdLegend = 1000
)

// StatusOf derives the status tier for a points balance. Bounds are
// inclusive and negative balances are Beginner.
func StatusOf(points int) models.Status {
	switch {
	case points >= ThresholdLegend:
		return models.StatusLegend
	case points >= ThresholdHero:
		return models.StatusHero
	case points >= ThresholdLocal:
		return models.StatusLocal
	default:
		return models.StatusBeginner
	}
}

func ProfileOf(u models.User) models.Profile {
	return models.Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Points:   u.Points,
		Status:   StatusOf(u.Points),
	}
}
