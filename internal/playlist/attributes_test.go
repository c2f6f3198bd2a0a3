package playlist

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		extinf string
		want   string
	}{
		{name: "plain", extinf: "#EXTINF:-1,BBC One", want: "BBC One"},
		{name: "with attributes", extinf: `#EXTINF:-1 tvg-logo="x" group-title="UK",BBC Two`, want: "BBC Two"},
		{name: "comma inside attribute", extinf: `#EXTINF:-1 tvg-name="A, B",Real`, want: "Real"},
		{name: "surrounding spaces", extinf: "#EXTINF:-1,   Spaced   ", want: "Spaced"},
		{name: "no comma", extinf: `#EXTINF:-1 tvg-name="A"`, want: `#EXTINF:-1 tvg-name="A"`},
		{name: "no comma trimmed", extinf: "#EXTINF:-1   ", want: "#EXTINF:-1"},
		{name: "not extinf", extinf: "#EXTGRP:News,Foo", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.extinf); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.extinf, got, tt.want)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	extinf := `#EXTINF:-1 tvg-name="Name Attr" tvg-logo="http://logo/a.png" group-title="Films",Display`

	if got := TvgName(extinf); got != "Name Attr" {
		t.Errorf("TvgName() = %q, want %q", got, "Name Attr")
	}
	if got := TvgLogo(extinf); got != "http://logo/a.png" {
		t.Errorf("TvgLogo() = %q, want %q", got, "http://logo/a.png")
	}
	if got := GroupTitle(extinf); got != "Films" {
		t.Errorf("GroupTitle() = %q, want %q", got, "Films")
	}
}

func TestAttributes_Absent(t *testing.T) {
	tests := []struct {
		name   string
		extinf string
	}{
		{name: "missing", extinf: "#EXTINF:-1,Name"},
		{name: "empty value", extinf: `#EXTINF:-1 group-title="",Name`},
		{name: "blank value", extinf: `#EXTINF:-1 group-title="   ",Name`},
		{name: "not extinf", extinf: `#EXTGRP group-title="News"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GroupTitle(tt.extinf); got != "" {
				t.Errorf("GroupTitle(%q) = %q, want empty", tt.extinf, got)
			}
		})
	}
}

func TestGroupTitle_KeepsValueVerbatim(t *testing.T) {
	extinf := `#EXTINF:-1 group-title=" Spaced Group ",Name`

	if got := GroupTitle(extinf); got != " Spaced Group " {
		t.Errorf("GroupTitle() = %q, want %q", got, " Spaced Group ")
	}
}
