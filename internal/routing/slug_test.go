package routing

import "testing"

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Kids Karate (Ages 5-12)": "kids-karate-ages-5-12",
		"  Adult BJJ!! ":          "adult-bjj",
		"Café Ölympics":           "caf-lympics",
		"!!!":                     "item",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetailPath(t *testing.T) {
	cases := []struct{ section, slug, label, want string }{
		{"programs", "kids", "Kids Karate", "/programs/kids"},
		{"programs", "", "Adult Kickboxing", "/programs/adult-kickboxing"},
		{"/blog/", " /grand-opening/ ", "Grand opening", "/blog/grand-opening"},
		{"blog", "", "", "/blog/item"},
	}
	for _, tc := range cases {
		if got := DetailPath(tc.section, tc.slug, tc.label); got != tc.want {
			t.Errorf("DetailPath(%q, %q, %q) = %q, want %q", tc.section, tc.slug, tc.label, got, tc.want)
		}
	}
}
