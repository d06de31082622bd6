package achievements

// Rarity represents the difficulty tier of an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities returns all rarities in order from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// Icon returns the display icon for the rarity.
func (r Rarity) Icon() string {
	switch r {
	case RarityCommon:
		return "🥉"
	case RarityRare:
		return "🥈"
	case RarityEpic:
		return "🥇"
	case RarityLegendary:
		return "🏆"
	default:
		return "✦"
	}
}

// RarityForPoints returns the rarity for an item worth the given points.
func RarityForPoints(points int) Rarity {
	switch {
	case points >= 100:
		return RarityLegendary
	case points >= 50:
		return RarityEpic
	case points >= 25:
		return RarityRare
	default:
		return RarityCommon
	}
}
