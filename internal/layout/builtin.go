package layout

import (
	"embed"
	"sort"
	"strings"
)

//go:embed layouts/*.toml
var builtinFS embed.FS

// Builtins returns the names of the embedded layouts, sorted.
func Builtins() []string {
	entries, err := builtinFS.ReadDir("layouts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".toml") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".toml"))
	}
	sort.Strings(names)
	return names
}

func builtin(name string) ([]byte, bool) {
	data, err := builtinFS.ReadFile("layouts/" + strings.ToLower(name) + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}
