package content

import "testing"

func TestLLMsText_OverrideVerbatim(t *testing.T) {
	d := &Document{
		Site:         Site{Name: "Apex"},
		TechnicalSEO: &TechnicalSEO{LLMsTxt: "custom body\n"},
		Programs:     []Program{{Name: "Ignored"}},
	}
	if got := LLMsText(d); got != "custom body\n" {
		t.Fatalf("got %q", got)
	}
}

func TestLLMsText_Synthesised(t *testing.T) {
	d := &Document{
		Site:      Site{Name: "Apex Karate"},
		AIContent: &AIContent{CompanySummary: "Family martial arts studio."},
		Programs: []Program{
			{Name: "Little Dragons", AgeRange: "4-6", Description: "Focus and fun."},
			{Name: "Adults", Description: "Fitness and self defense."},
		},
		Location: &Location{Name: "Main Dojo", Address: "1 Elm St", Phone: "555-0100"},
	}

	want := "# Apex Karate\n" +
		"\n## About\n\nFamily martial arts studio.\n" +
		"\n## Programs\n\n" +
		"- Little Dragons (4-6): Focus and fun.\n" +
		"- Adults: Fitness and self defense.\n" +
		"\n## Locations\n\n" +
		"- Main Dojo: 1 Elm St (555-0100)\n"

	if got := LLMsText(d); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestLLMsText_EmptyDocument(t *testing.T) {
	if got := LLMsText(&Document{}); got != "# Site\n" {
		t.Fatalf("got %q", got)
	}
	if got := LLMsText(nil); got != "" {
		t.Fatalf("nil doc gave %q", got)
	}
}
