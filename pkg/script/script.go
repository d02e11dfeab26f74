// Package script defines the compiled form of an event script: named
// sections, each holding an ordered list of instructions.
package script

import "sort"

// Section is one parsed section before assembly.
type Section struct {
	Name         string
	Instructions []Instruction
}

// Script maps section names to instruction lists. It is immutable once built.
type Script struct {
	sections map[string][]Instruction
}

// FromSections assembles parsed sections into a Script. When two sections
// share a name the later one replaces the earlier one entirely.
func FromSections(sections []Section) *Script {
	m := make(map[string][]Instruction, len(sections))
	for _, s := range sections {
		list := make([]Instruction, len(s.Instructions))
		copy(list, s.Instructions)
		m[s.Name] = list
	}
	return &Script{sections: m}
}

// Section returns the instructions of the named section in source order.
// The returned slice is a copy.
func (s *Script) Section(name string) ([]Instruction, bool) {
	list, ok := s.sections[name]
	if !ok {
		return nil, false
	}
	out := make([]Instruction, len(list))
	copy(out, list)
	return out, true
}

// Names returns the section names in sorted order.
func (s *Script) Names() []string {
	names := make([]string, 0, len(s.sections))
	for name := range s.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of sections.
func (s *Script) Len() int {
	return len(s.sections)
}
