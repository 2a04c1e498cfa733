package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ann@example.com", "ann@example.com"},
		{"ANN@EXAMPLE.COM", "ann@example.com"},
		{"  Ann@Example.com\t", "ann@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"events-in-pune", "events-in-pune"},
		{"  Events In   Pune ", "events-in-pune"},
		{"MUMBAI", "mumbai"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slug(tt.input); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPaging(t *testing.T) {
	tests := []struct {
		name                string
		page, limit         string
		wantPage, wantLimit int
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "3", "25", 3, 25},
		{"capped", "1", "500", 1, 100},
		{"negative page", "-2", "5", 1, 5},
		{"garbage", "abc", "x", 1, 10},
		{"zero limit", "2", "0", 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l := Paging(tt.page, tt.limit, 10, 100)
			if p != tt.wantPage || l != tt.wantLimit {
				t.Errorf("Paging(%q, %q) = (%d, %d), want (%d, %d)", tt.page, tt.limit, p, l, tt.wantPage, tt.wantLimit)
			}
		})
	}
}
