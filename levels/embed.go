package levels

import (
	"embed"
	"fmt"
)

//go:embed *.yaml
var levelsFS embed.FS

// DefaultName is the embedded level used when no -level flag is given.
const DefaultName = "falling_star.yaml"

// Default returns the embedded fallback level.
func Default() (*Spec, error) {
	data, err := levelsFS.ReadFile(DefaultName)
	if err != nil {
		return nil, fmt.Errorf("levels: embedded %s: %w", DefaultName, err)
	}
	return Parse(data)
}
