// Package parser converts player input into Command values.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/kernelcrawl/types"
)

var directionExpansions = map[string]string{
	"n": "north",
	"s": "south",
	"e": "east",
	"w": "west",
}

// Full direction names that are standalone shortcuts for "go <dir>".
var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
}

var verbAliases = map[string]string{
	// Look / Examine
	"l":        "look",
	"x":        "look",
	"examine":  "look",
	"inspect":  "look",
	"check":    "look",
	"describe": "look",

	// Scan
	"search": "scan",
	"probe":  "scan",

	// Movement
	"walk":    "go",
	"run":     "go",
	"move":    "go",
	"head":    "go",
	"proceed": "go",
	"enter":   "go",
	"travel":  "go",

	// Take / Get
	"get":   "take",
	"grab":  "take",
	"hold":  "take",
	"carry": "take",

	// Drop / Discard
	"leave":  "drop",
	"delete": "discard",
	"trash":  "discard",
	"remove": "drop",

	// Equipment
	"wield": "equip",
	"wear":  "equip",
	"ready": "equip",
	"stow":  "unequip",

	// Use
	"read":     "use",
	"drink":    "use",
	"consume":  "use",
	"install":  "use",
	"apply":    "use",
	"activate": "use",

	// Heal
	"patch":  "heal",
	"repair": "heal",

	// Attack / Combat
	"attack":  "fight",
	"hit":     "fight",
	"strike":  "fight",
	"kill":    "fight",
	"engage":  "fight",
	"destroy": "fight",

	// Puzzle
	"answer":  "solve",
	"decrypt": "solve",

	// Meta
	"inv":     "inventory",
	"i":       "inventory",
	"storage": "inventory",
	"status":  "stats",
	"stat":    "stats",
	"?":       "help",
	"menu":    "pause",
	"q":       "quit",
	"exit":    "quit",
	"g":       "again",
	"repeat":  "again",
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command line into a Command. The verb and directions
// are lowercased; the object keeps its original case so puzzle answers typed
// inline ("solve Echo") survive intact.
func Parse(input string) types.Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Command{}
	}

	words := strings.Fields(input)
	first := strings.ToLower(words[0])

	// Direction shortcut: bare "n", "south", etc. → go <direction>
	if len(words) == 1 {
		if dir, ok := direction(first); ok {
			return types.Command{Verb: "go", Object: dir}
		}
	}

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)
	verb := strings.ToLower(words[0])

	// Apply verb aliases.
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	rest := stripArticles(words[1:])
	object := strings.Join(rest, " ")

	if verb == "go" {
		if dir, ok := direction(strings.ToLower(object)); ok {
			object = dir
		}
	}

	return types.Command{Verb: verb, Object: object}
}

func direction(word string) (string, bool) {
	if dir, ok := directionExpansions[word]; ok {
		return dir, true
	}
	if directionNames[word] {
		return word, true
	}
	return "", false
}

// expandMultiWordVerbs handles "look at", "pick up", "put down" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	second := strings.ToLower(words[1])
	switch strings.ToLower(words[0]) {
	case "look":
		if second == "at" || second == "in" {
			return append([]string{"look"}, words[2:]...)
		}
	case "pick":
		if second == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "put":
		if second == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
		if second == "down" || second == "away" {
			return append([]string{"drop"}, words[2:]...)
		}
	case "take":
		if second == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "throw":
		if second == "away" || second == "out" {
			return append([]string{"discard"}, words[2:]...)
		}
	case "turn", "switch":
		if second == "on" {
			return append([]string{"use"}, words[2:]...)
		}
	case "run", "go":
		if second == "away" {
			return []string{"retreat"}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[strings.ToLower(w)] {
			result = append(result, w)
		}
	}
	return result
}

// keyBindings maps single keypresses to commands.
var keyBindings = map[string]types.Command{
	types.KeyUp:     {Verb: "go", Object: string(types.North)},
	types.KeyDown:   {Verb: "go", Object: string(types.South)},
	types.KeyLeft:   {Verb: "go", Object: string(types.West)},
	types.KeyRight:  {Verb: "go", Object: string(types.East)},
	types.KeyEscape: {Verb: "pause"},
	"r":             {Verb: "scan"},
	"t":             {Verb: "take"},
	"h":             {Verb: "heal"},
	"s":             {Verb: "inventory"},
	"i":             {Verb: "stats"},
	"p":             {Verb: "solve"},
	"f":             {Verb: "fight"},
	"u":             {Verb: "use"},
	"e":             {Verb: "equip"},
	"l":             {Verb: "look"},
	"/":             {Verb: "help"},
	"q":             {Verb: "quit"},
}

// FromKey maps one input event to a Command. A submitted line is parsed
// as a line command; a keypress is looked up in the key bindings. The
// second result is false when the event means nothing at the top level.
func FromKey(ev types.KeyEvent) (types.Command, bool) {
	if strings.TrimSpace(ev.Text) != "" {
		return Parse(ev.Text), true
	}
	cmd, ok := keyBindings[strings.ToLower(ev.Key)]
	return cmd, ok
}

// KeyHelp lists the key bindings for the help screen, in display order.
func KeyHelp() [][2]string {
	return [][2]string{
		{"arrows", "move"},
		{"r", "scan the room"},
		{"t", "take an item"},
		{"f", "fight a monster"},
		{"p", "solve a puzzle"},
		{"h", "heal with the equipped med"},
		{"u", "use an item"},
		{"e", "equip an item"},
		{"s", "open storage"},
		{"i", "show stats"},
		{"l", "look around"},
		{"/", "help"},
		{"esc", "pause"},
		{"q", "quit"},
	}
}
