package game

const (
	DefaultSightRadius    = 4
	DefaultUnitsPerPlayer = 3
	DefaultMoveChance     = 0.5
)

var playerColorNames = []string{"red", "blue", "green", "yellow", "purple", "cyan", "orange", "white"}

func colorFor(player int) string {
	return playerColorNames[player%len(playerColorNames)]
}
