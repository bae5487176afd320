package domain

import (
	"cmp"
	"slices"
)

// CommandEntry describes one invocable slash command or subcommand.
type CommandEntry struct {
	Usage       string // e.g. "/queue view"
	Description string
}

// HelpSection groups the commands of one module.
type HelpSection struct {
	Module   string
	Commands []CommandEntry
}

// NewHelpSection creates a HelpSection with its commands sorted by usage.
func NewHelpSection(module string, commands []CommandEntry) HelpSection {
	sorted := slices.Clone(commands)
	slices.SortFunc(sorted, func(a, b CommandEntry) int {
		return cmp.Compare(a.Usage, b.Usage)
	})

	return HelpSection{
		Module:   module,
		Commands: sorted,
	}
}

// IsEmpty reports whether the section lists no commands.
func (s HelpSection) IsEmpty() bool {
	return len(s.Commands) == 0
}
