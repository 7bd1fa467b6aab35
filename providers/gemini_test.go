package providers

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"name": "x"}`, `{"name": "x"}`},
		{"json fence", "```json\n{\"name\": \"x\"}\n```", `{"name": "x"}`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"fence with trailing newline inside", "```json\n[]\n\n```", `[]`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapGeminiLandmarks(t *testing.T) {
	items := []geminiLandmark{
		{Name: "Coit Tower", Latitude: 37.8024, Longitude: -122.4058, Description: "Art deco tower."},
		{Name: "", Latitude: 1, Longitude: 1},
		{Name: "Palace of Fine Arts", Latitude: 37.8029, Longitude: -122.4485},
	}

	got := mapGeminiLandmarks(items)
	if len(got) != 2 {
		t.Fatalf("got %d landmarks, want 2 (unnamed skipped)", len(got))
	}
	if got[0].Name != "Coit Tower" || got[0].Description != "Art deco tower." {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Name != "Palace of Fine Arts" {
		t.Errorf("second = %+v", got[1])
	}
}
