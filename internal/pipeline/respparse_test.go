package pipeline

import (
	"testing"
)

func TestParseLabeled_TwoLanguages(t *testing.T) {
	raw := "French: Bonjour\nGerman: Hallo\n\nFrench: Monde\nGerman: Welt\n"
	out := ParseResponse(raw, []string{"French", "German"}, LabeledLines)
	if len(out) != 2 {
		t.Fatalf("expected 2 stanzas, got %d", len(out))
	}
	if out[0]["French"] != "Bonjour" || out[0]["German"] != "Hallo" {
		t.Errorf("stanza 0 = %v", out[0])
	}
	if out[1]["French"] != "Monde" || out[1]["German"] != "Welt" {
		t.Errorf("stanza 1 = %v", out[1])
	}
}

func TestParseLabeled_DropsFiller(t *testing.T) {
	raw := "Here are your translations:\n\nFrench: Bonjour\n\nHope that helps!\n"
	out := ParseResponse(raw, []string{"French"}, LabeledLines)
	if len(out) != 1 {
		t.Fatalf("expected 1 stanza, got %d", len(out))
	}
	if out[0]["French"] != "Bonjour" {
		t.Errorf("stanza 0 = %v", out[0])
	}
}

func TestParseLabeled_CaseInsensitivePrefix(t *testing.T) {
	out := ParseResponse("french: Bonjour\n", []string{"French"}, LabeledLines)
	if len(out) != 1 || out[0]["French"] != "Bonjour" {
		t.Errorf("got %v", out)
	}
}

func TestParseLabeled_RepeatedLabelClosesStanza(t *testing.T) {
	// The model skipped German in the first stanza and omitted the blank
	// separator; the repeated French label must start a new stanza instead
	// of overwriting the first one.
	raw := "French: Bonjour\nFrench: Monde\nGerman: Welt\n"
	out := ParseResponse(raw, []string{"French", "German"}, LabeledLines)
	if len(out) != 2 {
		t.Fatalf("expected 2 stanzas, got %d: %v", len(out), out)
	}
	if out[0]["French"] != "Bonjour" || out[0]["German"] != "" {
		t.Errorf("stanza 0 = %v", out[0])
	}
	if out[1]["French"] != "Monde" || out[1]["German"] != "Welt" {
		t.Errorf("stanza 1 = %v", out[1])
	}
}

func TestParseLabeled_EmptyResponse(t *testing.T) {
	if out := ParseResponse("", []string{"French"}, LabeledLines); len(out) != 0 {
		t.Errorf("expected no stanzas, got %v", out)
	}
}

func TestParseStructured_CleanArray(t *testing.T) {
	raw := `[{"index":1,"translations":{"French":"Bonjour"}},{"index":2,"translations":{"French":"Monde"}}]`
	out := ParseResponse(raw, []string{"French"}, StructuredJSON)
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0]["French"] != "Bonjour" || out[1]["French"] != "Monde" {
		t.Errorf("got %v", out)
	}
}

func TestParseStructured_SalvagesWrappedArray(t *testing.T) {
	raw := "Here is the JSON you asked for:\n```json\n" +
		`[{"index":1,"translations":{"French":"Bonjour"}}]` +
		"\n```\nLet me know if you need more."
	out := ParseResponse(raw, []string{"French"}, StructuredJSON)
	if len(out) != 1 || out[0]["French"] != "Bonjour" {
		t.Errorf("salvage failed: %v", out)
	}
}

func TestParseStructured_CleansASSLineBreaks(t *testing.T) {
	raw := `[{"index":1,"translations":{"French":"Bonjour\N le monde"}}]`
	out := ParseResponse(raw, []string{"French"}, StructuredJSON)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0]["French"] != "Bonjour\n le monde" {
		t.Errorf("got %q", out[0]["French"])
	}
}

func TestParseStructured_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "{]"} {
		if out := ParseResponse(raw, []string{"French"}, StructuredJSON); len(out) != 0 {
			t.Errorf("ParseResponse(%q) = %v, want empty", raw, out)
		}
	}
}

func TestParseStructured_MissingLanguageField(t *testing.T) {
	raw := `[{"index":1,"translations":{"French":"Bonjour"}}]`
	out := ParseResponse(raw, []string{"French", "German"}, StructuredJSON)
	if len(out) != 1 {
		t.Fatalf("expected 1 item, got %d", len(out))
	}
	if out[0]["German"] != "" {
		t.Errorf("missing field should be empty, got %q", out[0]["German"])
	}
}
