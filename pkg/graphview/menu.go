package graphview

// Registry maps opaque command ids to their owning session and handler.
// The front end renders Items in registration order and funnels key or
// menu activations through Dispatch; the session never sees raw ids.
type Registry struct {
	nextID  int
	entries map[int]menuEntry
	order   []int
}

type menuEntry struct {
	owner  *Session
	name   string
	hotkey string
	fn     func(*Session)
}

// MenuItem is one renderable command entry.
type MenuItem struct {
	ID     int
	Name   string
	Hotkey string
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{
		nextID:  1,
		entries: make(map[int]menuEntry),
	}
}

// Add registers a command and returns its id.
func (r *Registry) Add(owner *Session, name, hotkey string, fn func(*Session)) int {
	id := r.nextID
	r.nextID++
	r.entries[id] = menuEntry{owner: owner, name: name, hotkey: hotkey, fn: fn}
	r.order = append(r.order, id)
	return id
}

// Remove unregisters a command id. Unknown ids are ignored.
func (r *Registry) Remove(id int) {
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// RemoveOwned drops every command belonging to the given session. Called
// from the session's teardown observer so stale entries cannot dispatch
// into a dead session.
func (r *Registry) RemoveOwned(owner *Session) {
	kept := r.order[:0]
	for _, id := range r.order {
		if r.entries[id].owner == owner {
			delete(r.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// Dispatch runs the handler registered under id. Returns false for
// unknown ids.
func (r *Registry) Dispatch(id int) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.fn(e.owner)
	return true
}

// DispatchKey runs the first command bound to the given hotkey.
func (r *Registry) DispatchKey(key string) bool {
	for _, id := range r.order {
		if e := r.entries[id]; e.hotkey == key {
			e.fn(e.owner)
			return true
		}
	}
	return false
}

// Items returns the current command entries in registration order.
func (r *Registry) Items() []MenuItem {
	items := make([]MenuItem, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		items = append(items, MenuItem{ID: id, Name: e.name, Hotkey: e.hotkey})
	}
	return items
}

// InstallMenu registers the session's interactive command set with the
// registry. Safe to call once per session; the entries are removed again
// when the surface is destroyed.
func (s *Session) InstallMenu(reg *Registry) {
	if s.installedMnu {
		return
	}
	s.installedMnu = true
	s.reg = reg

	add := func(name, hotkey string, fn func(*Session)) {
		s.menuIDs = append(s.menuIDs, reg.Add(s, name, hotkey, fn))
	}

	add("Clear selection", "D", func(sess *Session) {
		sess.ClearSelection(false)
	})
	add("Clear highlighting", "H", func(sess *Session) {
		sess.ClearHighlight(false)
	})
	add("Switch to single view", "U", func(sess *Session) {
		sess.RedoLayout(RefreshSingle)
	})
	add("Switch to combined view", "G", func(sess *Session) {
		sess.RedoLayout(RefreshCombined)
	})
	add("Combine nodes", "C", func(sess *Session) {
		sess.CombineSelection()
	})
	add("Find group", "F", func(sess *Session) {
		sess.FindAndHighlight()
	})
	add("Edit description", "E", func(sess *Session) {
		sess.EditDescription()
	})

	// The selection-mode entry relabels itself on each toggle, so it is
	// tracked separately from the fixed set.
	s.idmSelMode = reg.Add(s, "Start selection mode", "S", func(sess *Session) {
		sess.ToggleSelMode()
	})

	s.OnTeardown(func() {
		reg.RemoveOwned(s)
		s.reg = nil
		s.idmSelMode = 0
	})
}
