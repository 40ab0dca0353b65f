package model

import (
	"net"
	"strconv"
)

// Grid and network limits enforced by the settings dialog.
const (
	MinCellSize = 8
	MaxCellSize = 256
	MinGridDim  = 1
	MaxGridDim  = 256
	MinPort     = 1024
	MaxPort     = 65535
)

// Settings holds the dashboard preferences persisted between sessions.
type Settings struct {
	// Grid
	CellSize int `json:"grid"` // Cell edge in pixels
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`

	// Communication client
	IP                string `json:"ip"`
	Port              int    `json:"port"`
	RedisDB           int    `json:"redis_db"`
	PollIntervalMS    int    `json:"poll_interval_ms"`
	LatencyIntervalMS int    `json:"latency_interval_ms"`

	// Application preferences
	AutoSaveInterval int      `json:"auto_save_interval"` // minutes, 0 = disabled
	Theme            string   `json:"theme"`              // "dark", "light", "system"
	RecentLayouts    []string `json:"recent_layouts"`

	Layout []LayoutRecord `json:"layout"`
}

// DefaultSettings returns the settings used when nothing has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		CellSize:          48,
		Rows:              10,
		Cols:              10,
		IP:                "10.0.0.2",
		Port:              8765,
		PollIntervalMS:    100,
		LatencyIntervalMS: 1000,
		AutoSaveInterval:  0,
		Theme:             "dark",
		RecentLayouts:     []string{},
		Layout:            []LayoutRecord{},
	}
}

// Normalize clamps every numeric field into its supported range and fills
// empty fields with defaults.
func (s *Settings) Normalize() {
	d := DefaultSettings()
	s.CellSize = clampOr(s.CellSize, MinCellSize, MaxCellSize, d.CellSize)
	s.Rows = clampOr(s.Rows, MinGridDim, MaxGridDim, d.Rows)
	s.Cols = clampOr(s.Cols, MinGridDim, MaxGridDim, d.Cols)
	s.Port = clampOr(s.Port, MinPort, MaxPort, d.Port)
	if s.IP == "" {
		s.IP = d.IP
	}
	if s.RedisDB < 0 {
		s.RedisDB = 0
	}
	if s.PollIntervalMS <= 0 {
		s.PollIntervalMS = d.PollIntervalMS
	}
	if s.LatencyIntervalMS <= 0 {
		s.LatencyIntervalMS = d.LatencyIntervalMS
	}
	if s.AutoSaveInterval < 0 {
		s.AutoSaveInterval = 0
	}
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.RecentLayouts == nil {
		s.RecentLayouts = []string{}
	}
	if s.Layout == nil {
		s.Layout = []LayoutRecord{}
	}
}

// Address returns the host:port pair of the communication client.
func (s Settings) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// ValidIPv4 reports whether ip is a dotted-quad IPv4 address.
func ValidIPv4(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() != nil && len(ip) <= len("255.255.255.255")
}

// AddRecentLayout moves name to the front of the recent list, keeping at
// most max entries.
func (s *Settings) AddRecentLayout(name string, max int) {
	out := []string{name}
	for _, n := range s.RecentLayouts {
		if n != name {
			out = append(out, n)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	s.RecentLayouts = out
}

func clampOr(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
