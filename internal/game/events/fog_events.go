package events

// Event type constants
const (
	TypeFogInitialized     = "fow.initialized"
	TypeFogCleaned         = "fow.cleaned"
	TypeFogTypeChanged     = "fow.type_changed"
	TypeFogSettingsChanged = "fow.settings_changed"
	TypeWorldGenerated     = "world.generated"
	TypeVisionChanged      = "vision.changed"
)

// FogInitializedEvent is published when a fog of war controller allocates
// its buffers for a map
type FogInitializedEvent struct {
	BaseEvent
	FogType   string
	MapWidth  int
	MapHeight int
}

// NewFogInitializedEvent creates a new FogInitializedEvent
func NewFogInitializedEvent(source, fogType string, width, height int) *FogInitializedEvent {
	return &FogInitializedEvent{
		BaseEvent: newBase(TypeFogInitialized, source),
		FogType:   fogType,
		MapWidth:  width,
		MapHeight: height,
	}
}

// FogCleanedEvent is published when a controller releases its buffers.
// Hard cleans also forget the players vision is shown for.
type FogCleanedEvent struct {
	BaseEvent
	Hard bool
}

// NewFogCleanedEvent creates a new FogCleanedEvent
func NewFogCleanedEvent(source string, hard bool) *FogCleanedEvent {
	return &FogCleanedEvent{
		BaseEvent: newBase(TypeFogCleaned, source),
		Hard:      hard,
	}
}

// FogTypeChangedEvent is published when the fog algorithm is switched
type FogTypeChangedEvent struct {
	BaseEvent
	From string
	To   string
}

// NewFogTypeChangedEvent creates a new FogTypeChangedEvent
func NewFogTypeChangedEvent(source, from, to string) *FogTypeChangedEvent {
	return &FogTypeChangedEvent{
		BaseEvent: newBase(TypeFogTypeChanged, source),
		From:      from,
		To:        to,
	}
}

// FogSettingsChangedEvent is published by every accepted setter call
type FogSettingsChangedEvent struct {
	BaseEvent
	Setting string
	Value   string
}

// NewFogSettingsChangedEvent creates a new FogSettingsChangedEvent
func NewFogSettingsChangedEvent(source, setting, value string) *FogSettingsChangedEvent {
	return &FogSettingsChangedEvent{
		BaseEvent: newBase(TypeFogSettingsChanged, source),
		Setting:   setting,
		Value:     value,
	}
}

// WorldGeneratedEvent is published when a new world is generated
type WorldGeneratedEvent struct {
	BaseEvent
	NumPlayers int
	NumUnits   int
	MapWidth   int
	MapHeight  int
	Seed       int64
}

// NewWorldGeneratedEvent creates a new WorldGeneratedEvent
func NewWorldGeneratedEvent(source string, numPlayers, numUnits, width, height int, seed int64) *WorldGeneratedEvent {
	return &WorldGeneratedEvent{
		BaseEvent:  newBase(TypeWorldGenerated, source),
		NumPlayers: numPlayers,
		NumUnits:   numUnits,
		MapWidth:   width,
		MapHeight:  height,
		Seed:       seed,
	}
}

// VisionChangedEvent is published when a player is added to or removed
// from the set vision is shown for
type VisionChangedEvent struct {
	BaseEvent
	PlayerID int
	Shown    bool
}

// NewVisionChangedEvent creates a new VisionChangedEvent
func NewVisionChangedEvent(source string, playerID int, shown bool) *VisionChangedEvent {
	return &VisionChangedEvent{
		BaseEvent: newBase(TypeVisionChanged, source),
		PlayerID:  playerID,
		Shown:     shown,
	}
}
