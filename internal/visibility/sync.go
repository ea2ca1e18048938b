package visibility

import "minimap_sync/internal/dataType"

// Toggle is an on-screen element that can be shown or hidden
type Toggle interface {
	Active() bool
	SetActive(bool)
}

// Loot is a grabbable object with an optional radar icon
type Loot interface {
	RadarIcon() Toggle
}

// TerminalObject is a terminal-linked door or hazard with its code label on the map
type TerminalObject interface {
	MapRadarText() Toggle
	MapRadarObject() Toggle
}

// Scene lists the live objects the sync looks at each tick
type Scene interface {
	Loots() []Loot
	TerminalObjects() []TerminalObject
}

// Sync re-derives object visibility from the settings every tick
type Sync struct {
	showTerminalCodes bool
}

func NewSync() *Sync {
	return &Sync{}
}

func (s *Sync) Tick(cfg dataType.MinimapSettings, scene Scene) {
	if scene == nil {
		return
	}

	for _, loot := range scene.Loots() {
		if loot == nil {
			continue
		}
		icon := loot.RadarIcon()
		if icon == nil {
			continue
		}
		if icon.Active() != cfg.ShowLoots {
			icon.SetActive(cfg.ShowLoots)
		}
	}

	if s.showTerminalCodes == cfg.ShowTerminalCodes {
		return
	}
	s.showTerminalCodes = cfg.ShowTerminalCodes
	for _, obj := range scene.TerminalObjects() {
		if obj == nil {
			continue
		}
		if text := obj.MapRadarText(); text != nil {
			text.SetActive(cfg.ShowTerminalCodes)
		}
		if marker := obj.MapRadarObject(); marker != nil {
			marker.SetActive(cfg.ShowTerminalCodes)
		}
	}
}
