// Package registry provides the global registry of named charsets.
// Charsets are registered in init() so the command layer, the config validator
// and the mapper can discover them without hardcoded lists.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"
)

// Charset is a named, ordered glyph ramp. Index 0 is drawn for the darkest
// brightness and the last index for the brightest.
type Charset struct {
	Name   string
	Glyphs []rune
}

// Len returns the number of glyphs in the ramp.
func (c Charset) Len() int {
	return len(c.Glyphs)
}

// Preview returns up to n glyphs of the ramp, with an ellipsis when truncated.
func (c Charset) Preview(n int) string {
	if len(c.Glyphs) <= n {
		return string(c.Glyphs)
	}
	return string(c.Glyphs[:n]) + "..."
}

// CharsetInfo contains metadata about a registered charset.
type CharsetInfo struct {
	Name    string
	Size    int
	Preview string
}

var (
	charsets = make(map[string]Charset)
	mu       sync.RWMutex
)

// Register adds a charset ramp under the given name.
// Panics if the name is already registered or the ramp has fewer than two glyphs.
func Register(name, ramp string) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := charsets[name]; exists {
		panic(fmt.Sprintf("registry: charset %q already registered", name))
	}
	if utf8.RuneCountInString(ramp) < 2 {
		panic(fmt.Sprintf("registry: charset %q needs at least two glyphs", name))
	}

	charsets[name] = Charset{Name: name, Glyphs: []rune(ramp)}
}

// List returns information about all registered charsets, sorted by name.
func List() []CharsetInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]CharsetInfo, 0, len(charsets))
	for name, cs := range charsets {
		result = append(result, CharsetInfo{
			Name:    name,
			Size:    cs.Len(),
			Preview: cs.Preview(15),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Lookup returns the charset registered under name.
// Returns an error if the name is not registered.
func Lookup(name string) (Charset, error) {
	mu.RLock()
	defer mu.RUnlock()

	cs, ok := charsets[name]
	if !ok {
		return Charset{}, fmt.Errorf("registry: unknown charset %q", name)
	}

	// Callers get their own slice so the registered ramp stays immutable
	glyphs := make([]rune, len(cs.Glyphs))
	copy(glyphs, cs.Glyphs)
	return Charset{Name: cs.Name, Glyphs: glyphs}, nil
}

// Exists checks if a charset with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := charsets[name]
	return ok
}

// Names returns the registered charset names, sorted.
func Names() []string {
	infos := List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names
}
