package listing

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/zurustar/evscript/pkg/compiler"
	"github.com/zurustar/evscript/pkg/script"
)

const sample = `--- shop
talk(hello, [(buy, shop_buy), (leave, bye)])
special(shop_buy)
jump_if(bye, has_item(coupon) || $(visits) > 3)
gset(visits, $(visits) + 1)
receive_money(-5)
remove_item(coupon)
--- bye
talk(goodbye)
--- empty
`

func mustCompile(t *testing.T, src string) *script.Script {
	t.Helper()
	s, err := compiler.Compile(src)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	return s
}

func TestListingConformsToSchema(t *testing.T) {
	s := mustCompile(t, sample)

	var buf bytes.Buffer
	if err := Write(&buf, "shop.script", s, FormatJSON); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	// Load schema bytes via relative path to repository docs
	schemaPath := filepath.Join("..", "..", "docs", "listing.schema.json")
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)
	docLoader := gojsonschema.NewBytesLoader(buf.Bytes())

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("listing does not conform to schema")
	}
}

func TestWrite_JSON(t *testing.T) {
	s := mustCompile(t, sample)

	var buf bytes.Buffer
	if err := Write(&buf, "shop.script", s, FormatJSON); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if doc.File != "shop.script" {
		t.Errorf("File = %q", doc.File)
	}
	var names []string
	for _, sec := range doc.Sections {
		names = append(names, sec.Name)
	}
	if !reflect.DeepEqual(names, []string{"bye", "empty", "shop"}) {
		t.Errorf("section names = %v", names)
	}

	shop := doc.Sections[2].Instructions
	want := []Instruction{
		{Op: "talk", Text: "hello", Choices: []Choice{{Label: "buy", Section: "shop_buy"}, {Label: "leave", Section: "bye"}}},
		{Op: "special", Kind: "shop_buy"},
		{Op: "jump_if", Section: "bye", Cond: "has_item(coupon) || $(visits) > 3"},
		{Op: "gset", Var: "visits", Value: "$(visits) + 1"},
		{Op: "receive_money", Amount: "-5"},
		{Op: "remove_item", Item: "coupon"},
	}
	if !reflect.DeepEqual(shop, want) {
		t.Errorf("shop instructions =\n%#v\nwant\n%#v", shop, want)
	}

	if !strings.Contains(buf.String(), `"instructions": []`) {
		t.Errorf("empty section should list an empty array:\n%s", buf.String())
	}
}

func TestWrite_YAML(t *testing.T) {
	s := mustCompile(t, sample)

	var buf bytes.Buffer
	if err := Write(&buf, "shop.script", s, FormatYAML); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var got Document
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want, err := Build("shop.script", s)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	// yaml decodes an empty sequence as an empty slice
	if !reflect.DeepEqual(&got, want) {
		t.Errorf("YAML round trip =\n%#v\nwant\n%#v", got, *want)
	}
}

func TestWrite_Text(t *testing.T) {
	s := mustCompile(t, sample)

	var buf bytes.Buffer
	if err := Write(&buf, "shop.script", s, FormatText); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	want := `--- bye
talk(goodbye)
--- empty
--- shop
talk(hello, [(buy, shop_buy), (leave, bye)])
special(shop_buy)
jump_if(bye, has_item(coupon) || $(visits) > 3)
gset(visits, $(visits) + 1)
receive_money(-5)
remove_item(coupon)
`
	if buf.String() != want {
		t.Errorf("text listing =\n%s\nwant\n%s", buf.String(), want)
	}

	again := mustCompile(t, buf.String())
	assertSameScript(t, again, s)
}

func TestWrite_UnknownFormat(t *testing.T) {
	s := mustCompile(t, sample)
	if err := Write(&bytes.Buffer{}, "x", s, Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{" text ", FormatText, false},
		{"xml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatExtension(t *testing.T) {
	if FormatYAML.Extension() != ".yaml" || FormatJSON.Extension() != ".json" || FormatText.Extension() != ".txt" {
		t.Errorf("unexpected extensions")
	}
}

func TestTextListingRecompiles(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genLine := gen.OneConstOf(
		"jump(a)",
		"jump_if(b, $(x) >= 2)",
		"talk(t)",
		"talk(t, [(yes, a), (no, b)])",
		"gset(x, (1 + 2) * 3)",
		"receive_money(100)",
		"remove_item(rusty-key)",
		"special(shop_sell)",
	)

	properties.Property("text listing compiles to the same script", prop.ForAll(
		func(lines []string) bool {
			src := "--- main\n" + strings.Join(lines, "\n")
			if len(lines) > 0 {
				src += "\n"
			}
			s, err := compiler.Compile(src)
			if err != nil {
				return false
			}

			var buf bytes.Buffer
			if err := Write(&buf, "main", s, FormatText); err != nil {
				return false
			}
			again, err := compiler.Compile(buf.String())
			if err != nil {
				return false
			}
			return sameScript(again, s)
		},
		gen.SliceOf(genLine),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func sameScript(a, b *script.Script) bool {
	if !reflect.DeepEqual(a.Names(), b.Names()) {
		return false
	}
	for _, name := range a.Names() {
		la, _ := a.Section(name)
		lb, _ := b.Section(name)
		if !reflect.DeepEqual(la, lb) {
			return false
		}
	}
	return true
}

func assertSameScript(t *testing.T, got, want *script.Script) {
	t.Helper()
	if !sameScript(got, want) {
		t.Errorf("scripts differ: got sections %v, want %v", got.Names(), want.Names())
	}
}
