package risk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// State is the persisted portfolio guard state, carried across process
// restarts so a tripped drawdown guard keeps blocking entries after a crash.
type State struct {
	Equity            float64   `json:"equity"`
	Peak              float64   `json:"peak"`
	DayAnchor         float64   `json:"day_anchor"`
	Day               time.Time `json:"day"`
	DailySuspended    bool      `json:"daily_suspended"`
	DrawdownSuspended bool      `json:"drawdown_suspended"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LoadState reads guard state from a JSON file. Returns a zero state if the
// file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes guard state to a JSON file, creating parent directories
// as needed.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
