package selection

import "strings"

// Command is a console control word.
type Command int

const (
	CommandNone Command = iota
	CommandGuide
	CommandQuit
)

// InvalidMessage is shown when input resolves to nothing.
const InvalidMessage = `Invalid selection. Type "guide" to see the full list of options.`

var commands = map[string]Command{
	"guide":   CommandGuide,
	"help":    CommandGuide,
	"list":    CommandGuide,
	"options": CommandGuide,
	"quit":    CommandQuit,
	"q":       CommandQuit,
	"exit":    CommandQuit,
}

// ParseCommand recognises control words, case-insensitively.
func ParseCommand(input string) Command {
	return commands[strings.ToLower(strings.TrimSpace(input))]
}
