package arcade

// Player holds the runner's vitals as the authority last reported them.
type Player struct {
	Handle  string `json:"handle" mapstructure:"handle"`
	Level   int    `json:"level" mapstructure:"level"`
	HP      int    `json:"hp" mapstructure:"hp"`
	MaxHP   int    `json:"max_hp" mapstructure:"max_hp"`
	Credits int    `json:"credits" mapstructure:"credits"`
}

// Mission is one entry in the mission log.
type Mission struct {
	ID     string `json:"id" mapstructure:"id"`
	Title  string `json:"title" mapstructure:"title"`
	Status string `json:"status" mapstructure:"status"`
}

// Snapshot is the dashboard view of authoritative game state.
type Snapshot struct {
	Player    Player          `json:"player" mapstructure:"player"`
	Location  string          `json:"location" mapstructure:"location"`
	Inventory []string        `json:"inventory" mapstructure:"inventory"`
	Missions  []Mission       `json:"missions" mapstructure:"missions"`
	Flags     map[string]bool `json:"flags,omitempty" mapstructure:"flags"`
}

// NewSnapshot returns the session-start default.
func NewSnapshot() Snapshot {
	return Snapshot{
		Inventory: []string{},
		Missions:  []Mission{},
	}
}
