package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/kernelcrawl/engine/state"
	"github.com/nathoo/kernelcrawl/types"
)

func testWorld() *state.World {
	defs := &state.Defs{
		Game: types.GameDef{Start: "hall"},
		Rooms: map[string]types.RoomDef{
			"hall":     {ID: "hall", Exits: map[types.Direction]string{types.South: "entrance"}},
			"entrance": {ID: "entrance", Exits: map[types.Direction]string{types.North: "hall"}},
		},
		Items: map[string]types.ItemDef{
			"rusty_key":   {ID: "rusty_key", Kind: types.KindKey, Name: "Rusty Key", Location: "hall"},
			"golden_key":  {ID: "golden_key", Kind: types.KindKey, Name: "Golden Key", Location: "entrance"},
			"data_shard":  {ID: "data_shard", Kind: types.KindMisc, Name: "Old Data Shard", Location: "hall"},
			"blade":       {ID: "blade", Kind: types.KindWeapon, Name: "Quantum_Blade", Location: "hall"},
		},
		Monsters: map[string]types.MonsterDef{
			"guard":  {ID: "guard", Name: "Old Guard", Location: "hall", HP: 10},
			"sentry": {ID: "sentry", Name: "Sentry Bot", Location: "hall", HP: 10},
		},
	}
	return state.NewWorld(defs)
}

func TestRoomItem_ByName_CaseInsensitive(t *testing.T) {
	w := testWorld()

	it, err := RoomItem(w, "rusty key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name() != "Rusty Key" {
		t.Errorf("expected Rusty Key, got %q", it.Name())
	}
}

func TestRoomItem_UnderscoreNormalization(t *testing.T) {
	w := testWorld()

	it, err := RoomItem(w, "quantum blade")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name() != "Quantum_Blade" {
		t.Errorf("expected Quantum_Blade, got %q", it.Name())
	}
}

func TestRoomItem_WordPartial(t *testing.T) {
	w := testWorld()

	it, err := RoomItem(w, "data shard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name() != "Old Data Shard" {
		t.Errorf("expected Old Data Shard, got %q", it.Name())
	}
}

func TestRoomItem_RoomScoped(t *testing.T) {
	w := testWorld()
	// Player is in "hall" (start room). Golden key is in "entrance".

	_, err := RoomItem(w, "golden key")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if nf.Name != "golden key" {
		t.Errorf("expected name 'golden key', got %q", nf.Name)
	}
	if !errors.Is(err, state.ErrNotFound) {
		t.Error("expected NotFoundError to unwrap to ErrNotFound")
	}
}

func TestRoomItem_Ambiguity(t *testing.T) {
	w := testWorld()
	w.CurrentRoom().AddItem(state.NewMisc("Old Rag", "", 1))

	_, err := RoomItem(w, "old")
	var ae *AmbiguityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguityError, got %T: %v", err, err)
	}
	if len(ae.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(ae.Candidates))
	}
}

func TestRoomItem_ExactBeatsPartial(t *testing.T) {
	w := testWorld()
	w.CurrentRoom().AddItem(state.NewMisc("Key", "", 1))

	it, err := RoomItem(w, "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name() != "Key" {
		t.Errorf("expected exact match Key, got %q", it.Name())
	}
}

func TestRoomItem_Empty(t *testing.T) {
	w := testWorld()

	if _, err := RoomItem(w, "  "); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected not found for blank name, got %v", err)
	}
}

func TestStoredItem(t *testing.T) {
	w := testWorld()
	w.Player.Store(state.NewKey("Golden Key", "", 1, "gold"))

	it, err := StoredItem(w, "golden")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it.Name() != "Golden Key" {
		t.Errorf("expected Golden Key, got %q", it.Name())
	}
	if _, err := StoredItem(w, "rusty key"); err == nil {
		t.Error("floor items must not resolve from storage")
	}
}

func TestMonster(t *testing.T) {
	w := testWorld()

	tests := []struct {
		query string
		want  string
	}{
		{"guard", "guard"},
		{"old guard", "guard"},
		{"SENTRY", "sentry"},
		{"bot", "sentry"},
	}
	for _, tt := range tests {
		m, err := Monster(w, tt.query)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.query, err)
			continue
		}
		if m.ID != tt.want {
			t.Errorf("%q: got %q, want %q", tt.query, m.ID, tt.want)
		}
	}
}

func TestMonster_DeadNotResolved(t *testing.T) {
	w := testWorld()
	m, _ := w.CurrentRoom().Monster("guard")
	m.SetHP(0)

	if _, err := Monster(w, "guard"); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("expected dead monster to be unresolvable, got %v", err)
	}
}
