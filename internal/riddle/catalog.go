package riddle

import (
	"embed"
	"encoding/json"
	"sync"
)

// The embedded catalog seeds the riddles table on first start, so the server
// can pick a puzzle every day without any admin action.

//go:embed riddles.json
var catalogFS embed.FS

var (
	defaultsOnce sync.Once
	defaults     []Riddle
	defaultsErr  error
)

// DefaultCatalog returns the embedded riddle list. IDs are assigned by the
// database at seed time, not by this file.
func DefaultCatalog() ([]Riddle, error) {
	defaultsOnce.Do(func() {
		raw, err := catalogFS.ReadFile("riddles.json")
		if err != nil {
			defaultsErr = err
			return
		}
		defaultsErr = json.Unmarshal(raw, &defaults)
	})
	return defaults, defaultsErr
}
