package dnd5e

// hitPointBand is the top of a hit point band in the SRD monster statistics table
type hitPointBand struct {
	maxHitPoints    int
	challengeRating float64
}

var hitPointBands = []hitPointBand{
	{6, 0},
	{35, 0.125},
	{49, 0.25},
	{70, 0.5},
	{85, 1},
	{100, 2},
	{115, 3},
	{130, 4},
	{145, 5},
	{160, 6},
	{175, 7},
	{190, 8},
	{205, 9},
	{220, 10},
}

// ChallengeRatingForHitPoints returns the SRD challenge rating whose hit point band contains hp.
// Above the table it climbs one rating per 15 hit points, capped at 30.
func ChallengeRatingForHitPoints(hp int) float64 {
	for _, band := range hitPointBands {
		if hp <= band.maxHitPoints {
			return band.challengeRating
		}
	}

	last := hitPointBands[len(hitPointBands)-1]
	cr := last.challengeRating + float64((hp-last.maxHitPoints+14)/15)
	if cr > 30 {
		cr = 30
	}
	return cr
}
