package duplicates

// Arena interns normalised route keys. Two templates collide exactly when
// their keys intern to the same index.
type Arena struct {
	index map[string]int
	keys  []string
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{index: make(map[string]int)}
}

// Intern returns the index of key, adding it on first sight
func (a *Arena) Intern(key string) int {
	if i, ok := a.index[key]; ok {
		return i
	}
	i := len(a.keys)
	a.keys = append(a.keys, key)
	a.index[key] = i
	return i
}
