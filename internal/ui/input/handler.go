package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a viewer command triggered from the keyboard.
type Action int

const (
	ActionNone Action = iota
	ActionToggleFogType
	ActionToggleBilinear
	ActionToggleRevealMap
	ActionToggleNoFog
	ActionNextVisionPlayer
	ActionToggleSharedVision
	ActionForceRefresh
	ActionCopyStatus
	ActionScrollLeft
	ActionScrollRight
	ActionScrollUp
	ActionScrollDown
)

var actionNames = map[Action]string{
	ActionToggleFogType:      "toggle fog type",
	ActionToggleBilinear:     "toggle bilinear",
	ActionToggleRevealMap:    "toggle reveal map",
	ActionToggleNoFog:        "toggle no fog",
	ActionNextVisionPlayer:   "next vision player",
	ActionToggleSharedVision: "toggle shared vision",
	ActionForceRefresh:       "force refresh",
	ActionCopyStatus:         "copy status",
	ActionScrollLeft:         "scroll left",
	ActionScrollRight:        "scroll right",
	ActionScrollUp:           "scroll up",
	ActionScrollDown:         "scroll down",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// Scroll returns the tile delta of a scroll action.
func (a Action) Scroll() (dx, dy int) {
	switch a {
	case ActionScrollLeft:
		return -1, 0
	case ActionScrollRight:
		return 1, 0
	case ActionScrollUp:
		return 0, -1
	case ActionScrollDown:
		return 0, 1
	}
	return 0, 0
}

// DefaultBindings maps single key presses to actions.
var DefaultBindings = map[ebiten.Key]Action{
	ebiten.KeyF:     ActionToggleFogType,
	ebiten.KeyB:     ActionToggleBilinear,
	ebiten.KeyR:     ActionToggleRevealMap,
	ebiten.KeyN:     ActionToggleNoFog,
	ebiten.KeyTab:   ActionNextVisionPlayer,
	ebiten.KeyA:     ActionToggleSharedVision,
	ebiten.KeySpace: ActionForceRefresh,
	ebiten.KeyC:     ActionCopyStatus,
}

// ScrollBindings repeat while the key is held.
var ScrollBindings = map[ebiten.Key]Action{
	ebiten.KeyArrowLeft:  ActionScrollLeft,
	ebiten.KeyArrowRight: ActionScrollRight,
	ebiten.KeyArrowUp:    ActionScrollUp,
	ebiten.KeyArrowDown:  ActionScrollDown,
}

// Handler turns keyboard state into actions once per tick.
type Handler struct {
	bindings map[ebiten.Key]Action
	scroll   map[ebiten.Key]Action
	// scrollEvery is the number of ticks between repeats of a held key
	scrollEvery int

	keys []ebiten.Key
}

func NewHandler(scrollEvery int) *Handler {
	return &Handler{
		bindings:    DefaultBindings,
		scroll:      ScrollBindings,
		scrollEvery: max(scrollEvery, 1),
	}
}

// Update reads the keyboard and returns the actions of this tick.
func (h *Handler) Update() []Action {
	h.keys = inpututil.AppendJustPressedKeys(h.keys[:0])
	actions := h.Actions(h.keys)
	for key, action := range h.scroll {
		if d := inpututil.KeyPressDuration(key); d > 0 && h.repeat(d) {
			actions = append(actions, action)
		}
	}
	return actions
}

// Actions maps just pressed keys to their actions, in key order.
func (h *Handler) Actions(justPressed []ebiten.Key) []Action {
	var actions []Action
	for _, key := range justPressed {
		if a, ok := h.bindings[key]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// repeat reports whether a key held for d ticks fires this tick: on the
// first tick, then every scrollEvery ticks.
func (h *Handler) repeat(d int) bool {
	return d == 1 || d%h.scrollEvery == 0
}
