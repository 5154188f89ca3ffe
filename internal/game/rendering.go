package game

import (
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/FogOfWar/internal/game/core"
)

// This file contains the text rendering of the world as one player sees it.

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var playerColors = []string{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorCyan}

const (
	UnexploredSymbol = ' '
	ExploredSymbol   = '░'
	PlayerSymbols    = "ABCDEFGHIJKLMNOP"
)

var terrainSymbols = map[core.Terrain]rune{
	core.TerrainGrass:    '·',
	core.TerrainForest:   '♣',
	core.TerrainWater:    '~',
	core.TerrainMountain: '▲',
}

// Render draws the world as seen by player and the players sharing vision
// with it. A negative player renders everything. Units show as the letter
// of their owner.
func (e *Engine) Render(player int, colored bool) string {
	b := e.gs.Board
	observers := e.observers(player)

	unitAt := make(map[int]int, len(e.gs.Units))
	for _, u := range e.gs.Units {
		unitAt[u.Pos.ToIndex(b.W)] = u.Owner
	}

	var sb strings.Builder
	sb.Grow((b.W*8 + 8) * (b.H + 2))

	sb.WriteString("turn ")
	sb.WriteString(strconv.Itoa(e.gs.Turn))
	sb.WriteByte('\n')

	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			idx := b.Idx(x, y)
			level := e.bestLevel(idx, observers)
			switch {
			case level == core.VisionNone:
				sb.WriteRune(UnexploredSymbol)
			case level < core.VisionSeen:
				writeColored(&sb, colored, ColorGray, ExploredSymbol)
			default:
				if owner, ok := unitAt[idx]; ok {
					writeColored(&sb, colored, getPlayerColor(owner), rune(PlayerSymbols[owner%len(PlayerSymbols)]))
				} else {
					writeColored(&sb, colored, ColorWhite, terrainSymbols[b.T[idx].Terrain])
				}
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// observers lists player and the players sharing vision with it, or nil
// for an omniscient render.
func (e *Engine) observers(player int) []int {
	if player < 0 {
		return nil
	}
	return append([]int{player}, e.gs.Players.SharedVision(player)...)
}

func (e *Engine) bestLevel(idx int, observers []int) uint8 {
	if observers == nil {
		return core.VisionSeen
	}
	var best uint8
	for _, p := range observers {
		best = max(best, e.gs.Board.VisionLevel(idx, p))
	}
	return best
}

func writeColored(sb *strings.Builder, colored bool, color string, r rune) {
	if !colored {
		sb.WriteRune(r)
		return
	}
	sb.WriteString(color)
	sb.WriteRune(r)
	sb.WriteString(ColorReset)
}

// getPlayerColor returns the color for the given player ID
func getPlayerColor(playerID int) string {
	if playerID < 0 || playerID >= len(playerColors) {
		return ColorWhite
	}
	return playerColors[playerID]
}
