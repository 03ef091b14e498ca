package graphview

import (
	"testing"
)

func findItem(items []MenuItem, name string) *MenuItem {
	for i := range items {
		if items[i].Name == name {
			return &items[i]
		}
	}
	return nil
}

func TestInstallMenu(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := NewRegistry()
	env.sess.InstallMenu(reg)

	items := reg.Items()
	if len(items) != 8 {
		t.Fatalf("menu has %d entries, want 8", len(items))
	}
	for _, name := range []string{
		"Clear selection", "Clear highlighting",
		"Switch to single view", "Switch to combined view",
		"Combine nodes", "Find group", "Edit description",
		"Start selection mode",
	} {
		if findItem(items, name) == nil {
			t.Errorf("menu entry %q missing", name)
		}
	}

	// Installing twice must not duplicate entries.
	env.sess.InstallMenu(reg)
	if got := len(reg.Items()); got != 8 {
		t.Errorf("second install grew menu to %d entries", got)
	}
}

func TestDispatchSwitchesViews(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := NewRegistry()
	env.sess.InstallMenu(reg)

	item := findItem(reg.Items(), "Switch to single view")
	if !reg.Dispatch(item.ID) {
		t.Fatalf("dispatch failed")
	}
	if env.sess.Mode() != RefreshSingle {
		t.Errorf("mode = %v after single-view command", env.sess.Mode())
	}

	if !reg.DispatchKey("G") {
		t.Fatalf("hotkey dispatch failed")
	}
	if env.sess.Mode() != RefreshCombined {
		t.Errorf("mode = %v after combined-view hotkey", env.sess.Mode())
	}

	if reg.Dispatch(9999) {
		t.Errorf("dispatch of unknown id succeeded")
	}
	if reg.DispatchKey("?") {
		t.Errorf("dispatch of unbound hotkey succeeded")
	}
}

func TestSelectionModeRelabels(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := NewRegistry()
	env.sess.InstallMenu(reg)

	if !reg.DispatchKey("S") {
		t.Fatalf("selection-mode hotkey not bound")
	}
	if !env.sess.InSelectionMode() {
		t.Fatalf("selection mode not active after toggle")
	}
	if findItem(reg.Items(), "End selection mode") == nil {
		t.Errorf("menu entry not relabeled after entering selection mode")
	}
	if got := len(reg.Items()); got != 8 {
		t.Errorf("relabel changed menu size to %d", got)
	}

	if !reg.DispatchKey("S") {
		t.Fatalf("relabeled entry lost its hotkey")
	}
	if env.sess.InSelectionMode() {
		t.Errorf("selection mode still active after second toggle")
	}
	if findItem(reg.Items(), "Start selection mode") == nil {
		t.Errorf("menu entry not restored after leaving selection mode")
	}
}

func TestTeardownRemovesMenuEntries(t *testing.T) {
	env := newTestEnv(t, nil)
	reg := NewRegistry()
	env.sess.InstallMenu(reg)

	env.surf.Close()
	if got := len(reg.Items()); got != 0 {
		t.Fatalf("%d menu entries survived teardown", got)
	}
	if reg.DispatchKey("D") {
		t.Errorf("hotkey still dispatches into a dead session")
	}
}
