package content

import (
	"reflect"
	"testing"
)

func TestOrderSections(t *testing.T) {
	hidden := false
	defaults := []string{"hero", "about", "programs", "reviews", "cta"}

	tests := []struct {
		name string
		cfg  []SectionConfig
		want []string
	}{
		{"no config keeps defaults", nil, defaults},
		{
			"configured first then remaining defaults",
			[]SectionConfig{{ID: "reviews", Order: 2}, {ID: "programs", Order: 1}},
			[]string{"programs", "reviews", "hero", "about", "cta"},
		},
		{
			"hidden section dropped and not appended",
			[]SectionConfig{{ID: "about", Order: 1, Visible: &hidden}},
			[]string{"hero", "programs", "reviews", "cta"},
		},
		{
			"unknown ids ignored",
			[]SectionConfig{{ID: "gallery", Order: 0}, {ID: "cta", Order: 5}},
			[]string{"cta", "hero", "about", "programs", "reviews"},
		},
		{
			"ties keep listed order",
			[]SectionConfig{{ID: "cta", Order: 1}, {ID: "hero", Order: 1}},
			[]string{"cta", "hero", "about", "programs", "reviews"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderSections(tt.cfg, defaults)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultSections_UnknownPageUsesHome(t *testing.T) {
	if got := DefaultSections("gallery"); !reflect.DeepEqual(got, DefaultSections("home")) {
		t.Fatalf("got %v", got)
	}
	if !IsSection("faq") || IsSection("nope") {
		t.Fatal("IsSection mismatch")
	}
}

func TestIsPage(t *testing.T) {
	for _, p := range []string{"home", "about", "programs", "blog", "contact", "reviews"} {
		if !IsPage(p) {
			t.Errorf("IsPage(%q) = false", p)
		}
	}
	if IsPage("gallery") {
		t.Error("IsPage(gallery) = true")
	}
}
