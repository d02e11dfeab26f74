// Package listing renders compiled scripts for review: as YAML or JSON
// documents, or as canonical source text that compiles back to the same
// script.
package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/evscript/pkg/script"
)

// Format selects the listing representation.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("unknown listing format %q (want yaml, json or text)", s)
}

// Extension returns the file extension used for listings in this format.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Document is the YAML/JSON shape of a listing.
type Document struct {
	File     string    `yaml:"file" json:"file"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Section lists one section's instructions in source order.
type Section struct {
	Name         string        `yaml:"name" json:"name"`
	Instructions []Instruction `yaml:"instructions" json:"instructions"`
}

// Instruction is a flattened instruction. Only the fields of its Op are set;
// expressions are rendered as source text.
type Instruction struct {
	Op      string   `yaml:"op" json:"op"`
	Section string   `yaml:"section,omitempty" json:"section,omitempty"`
	Cond    string   `yaml:"cond,omitempty" json:"cond,omitempty"`
	Text    string   `yaml:"text,omitempty" json:"text,omitempty"`
	Choices []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`
	Var     string   `yaml:"var,omitempty" json:"var,omitempty"`
	Value   string   `yaml:"value,omitempty" json:"value,omitempty"`
	Amount  string   `yaml:"amount,omitempty" json:"amount,omitempty"`
	Item    string   `yaml:"item,omitempty" json:"item,omitempty"`
	Kind    string   `yaml:"kind,omitempty" json:"kind,omitempty"`
}

// Choice is one talk choice.
type Choice struct {
	Label   string `yaml:"label" json:"label"`
	Section string `yaml:"section" json:"section"`
}

// Build converts s into a Document. Sections are sorted by name.
func Build(name string, s *script.Script) (*Document, error) {
	doc := &Document{File: name, Sections: make([]Section, 0, s.Len())}
	for _, sectionName := range s.Names() {
		list, _ := s.Section(sectionName)
		section := Section{Name: sectionName, Instructions: make([]Instruction, 0, len(list))}
		for _, inst := range list {
			li, err := flatten(inst)
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", sectionName, err)
			}
			section.Instructions = append(section.Instructions, li)
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc, nil
}

func flatten(inst script.Instruction) (Instruction, error) {
	li := Instruction{Op: string(inst.Op())}
	switch v := inst.(type) {
	case *script.Jump:
		li.Section = v.Section
	case *script.JumpIf:
		li.Section = v.Section
		li.Cond = v.Cond.String()
	case *script.Talk:
		li.Text = v.TextID
		for _, c := range v.Choices {
			li.Choices = append(li.Choices, Choice{Label: c.Label, Section: c.Section})
		}
	case *script.GSet:
		li.Var = v.Var
		li.Value = v.Value.String()
	case *script.ReceiveMoney:
		li.Amount = v.Amount.String()
	case *script.RemoveItem:
		li.Item = v.ItemID
	case *script.Special:
		li.Kind = v.Kind.String()
	default:
		return Instruction{}, fmt.Errorf("unknown instruction %T", inst)
	}
	return li, nil
}

// Write renders s to w in the given format. name is recorded as the
// document's file.
func Write(w io.Writer, name string, s *script.Script, format Format) error {
	if format == FormatText {
		return writeText(w, s)
	}

	doc, err := Build(name, s)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown listing format %q", format)
}
