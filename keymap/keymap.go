// Package keymap maps physical keys to semantic game actions and dispatches them
// into an engine.
package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// Action is a semantic input.
type Action string

const (
	ActionDraw        Action = "draw"
	ActionDiscard     Action = "discard"
	ActionSwap        Action = "swap"
	ActionCallKaboo   Action = "call_kaboo"
	ActionEndTurn     Action = "end_turn"
	ActionConfirm     Action = "confirm"
	ActionSkip        Action = "skip"
	ActionSelect1     Action = "select_card_1"
	ActionSelect2     Action = "select_card_2"
	ActionSelect3     Action = "select_card_3"
	ActionSelect4     Action = "select_card_4"
	ActionActivateTap Action = "activate_tap"
)

var actions = map[Action]bool{
	ActionDraw: true, ActionDiscard: true, ActionSwap: true, ActionCallKaboo: true,
	ActionEndTurn: true, ActionConfirm: true, ActionSkip: true, ActionActivateTap: true,
	ActionSelect1: true, ActionSelect2: true, ActionSelect3: true, ActionSelect4: true,
}

// SelectIndex returns the zero-based hand position of a select action.
func (a Action) SelectIndex() (int, bool) {
	switch a {
	case ActionSelect1:
		return 0, true
	case ActionSelect2:
		return 1, true
	case ActionSelect3:
		return 2, true
	case ActionSelect4:
		return 3, true
	}
	return 0, false
}

// Keymap maps a normalised key name to an action.
type Keymap map[string]Action

// Default returns the standard bindings.
func Default() Keymap {
	return Keymap{
		"d":      ActionDraw,
		"x":      ActionDiscard,
		"s":      ActionSwap,
		"k":      ActionCallKaboo,
		"e":      ActionEndTurn,
		"enter":  ActionConfirm,
		"escape": ActionSkip,
		"1":      ActionSelect1,
		"2":      ActionSelect2,
		"3":      ActionSelect3,
		"4":      ActionSelect4,
		"t":      ActionActivateTap,
	}
}

// Parse builds a keymap from key → action-name pairs, e.g. loaded from settings.
func Parse(bindings map[string]string) (Keymap, error) {
	km := make(Keymap, len(bindings))
	for key, name := range bindings {
		a := Action(strings.ToLower(strings.TrimSpace(name)))
		if !actions[a] {
			return nil, fmt.Errorf("key %q: unknown action %q", key, name)
		}
		k := normalise(key)
		if k == "" {
			return nil, fmt.Errorf("empty key for action %q", name)
		}
		km[k] = a
	}
	return km, nil
}

// Lookup returns the action bound to key.
func (km Keymap) Lookup(key string) (Action, bool) {
	a, ok := km[normalise(key)]
	return a, ok
}

// Bindings returns the keys bound to a, sorted.
func (km Keymap) Bindings(a Action) []string {
	var out []string
	for k, v := range km {
		if v == a {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func normalise(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "esc":
		return "escape"
	case "return":
		return "enter"
	case " ", "spacebar":
		return "space"
	}
	return k
}
