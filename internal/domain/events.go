package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventGamesLoaded      EventType = "GamesLoaded"
	EventGamesRefreshed   EventType = "GamesRefreshed"
	EventRefreshRequested EventType = "RefreshRequested"
	EventRefreshFailed    EventType = "RefreshFailed"
	EventLaunchRequested  EventType = "LaunchRequested"
	EventLaunchStarted    EventType = "LaunchStarted"
	EventError            EventType = "Error"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventConfigSaved      EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// GamesLoadedEvent is emitted when the catalog is loaded from the local cache
type GamesLoadedEvent struct {
	Games []Game
}

func (e GamesLoadedEvent) Type() EventType { return EventGamesLoaded }

// GamesRefreshedEvent is emitted after a successful remote catalog refresh
type GamesRefreshedEvent struct {
	Games []Game
}

func (e GamesRefreshedEvent) Type() EventType { return EventGamesRefreshed }

// RefreshRequestedEvent is emitted when the user asks for a remote catalog refresh
type RefreshRequestedEvent struct{}

func (e RefreshRequestedEvent) Type() EventType { return EventRefreshRequested }

// RefreshFailedEvent is emitted when a remote catalog refresh fails
type RefreshFailedEvent struct {
	Err error
}

func (e RefreshFailedEvent) Type() EventType { return EventRefreshFailed }

// LaunchRequestedEvent is emitted when the user asks to launch a game
type LaunchRequestedEvent struct {
	Game    Game
	Minutes int
}

func (e LaunchRequestedEvent) Type() EventType { return EventLaunchRequested }

// LaunchStartedEvent is emitted once the decoy process has been spawned
type LaunchStartedEvent struct {
	Game Game
}

func (e LaunchStartedEvent) Type() EventType { return EventLaunchStarted }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	CatalogURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
