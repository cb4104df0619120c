package dnd5e

//go:generate mockgen -destination=mock/mock_client.go -package=mockdnd5e . Client

// Client looks up SRD monsters to inspire creature names
type Client interface {
	// MonsterNames returns the names of every SRD monster with the given challenge rating
	MonsterNames(challengeRating float64) ([]string, error)

	// SuggestNames returns monster names whose challenge rating matches a creature's hit points
	SuggestNames(hitPoints int) ([]string, error)
}
