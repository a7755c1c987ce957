package pricing

// Membership tier labels
const (
	LevelMember  = "Member"
	LevelSilver  = "Silver"
	LevelGold    = "Gold"
	LevelDiamond = "Diamond"
)

type tier struct {
	minPoints int64
	level     string
}

// Ordered ascending; a user holds the highest tier whose threshold is met.
var tiers = []tier{
	{0, LevelMember},
	{1000, LevelSilver},
	{5000, LevelGold},
	{20000, LevelDiamond},
}

// LevelForPoints returns the tier label a points total qualifies for.
// It is a suggestion only: users.level is stored separately and an operator
// override is permitted.
func LevelForPoints(points int64) string {
	level := tiers[0].level
	for _, t := range tiers {
		if points >= t.minPoints {
			level = t.level
		}
	}
	return level
}
