package dataType

// MinimapSettings is the user-visible display configuration shared through host overrides
type MinimapSettings struct {
	MinimapEnabled    bool `yaml:"minimap_enabled"`
	ShowLoots         bool `yaml:"show_loots"`
	ShowEnemies       bool `yaml:"show_enemies"`
	ShowLivePlayers   bool `yaml:"show_live_players"`
	ShowDeadPlayers   bool `yaml:"show_dead_players"`
	ShowRadarBoosters bool `yaml:"show_radar_boosters"`
	ShowTerminalCodes bool `yaml:"show_terminal_codes"`
	ShowShipArrow     bool `yaml:"show_ship_arrow"`
	AutoRotate        bool `yaml:"auto_rotate"`
	MinimapSize       int  `yaml:"minimap_size" validate:"min=100,max=1000"`
	MinimapZoom       int  `yaml:"minimap_zoom" validate:"min=1,max=100"`
}

func DefaultMinimapSettings() MinimapSettings {
	return MinimapSettings{
		MinimapEnabled:    true,
		ShowLoots:         true,
		ShowEnemies:       true,
		ShowLivePlayers:   true,
		ShowDeadPlayers:   true,
		ShowRadarBoosters: true,
		ShowTerminalCodes: true,
		ShowShipArrow:     true,
		AutoRotate:        false,
		MinimapSize:       200,
		MinimapZoom:       20,
	}
}
