package components

import (
	"strings"
	"testing"

	"github.com/mmcdole/neurostream/internal/domain"
)

func TestDetailsIgnoresOtherItem(t *testing.T) {
	d := NewDetails()
	d.SetSize(120, 40)
	d.Show(domain.Item{ID: "1", Title: "Heat"}, domain.CategoryMovies)
	d.Show(domain.Item{ID: "2", Title: "Ronin"}, domain.CategoryMovies)

	if d.SetDetail("1", domain.Detail{Tagline: "late"}) {
		t.Fatalf("detail for a replaced item must be ignored")
	}
	if !d.Loading() {
		t.Fatalf("modal should still be loading its own details")
	}
	if !d.SetDetail("2", domain.Detail{Tagline: "Trust no one"}) {
		t.Fatalf("detail for the shown item should apply")
	}
	if !strings.Contains(d.View(), "Trust no one") {
		t.Fatalf("view should show the tagline")
	}

	d.Hide()
	if d.SetDetail("2", domain.Detail{}) || d.SetFailed("2") {
		t.Fatalf("a closed modal must ignore late results")
	}
}

func TestDetailsPlaceholders(t *testing.T) {
	d := NewDetails()
	d.SetSize(140, 60)
	d.Show(domain.Item{ID: "7", Title: "Heat"}, domain.CategoryMovies)
	d.SetDetail("7", domain.Detail{Runtime: 170})

	body := d.renderBody(100)
	for _, want := range []string{"Released", "2h 50m", "Unavailable", "N/A"} {
		if !strings.Contains(body, want) {
			t.Fatalf("movie body missing %q:\n%s", want, body)
		}
	}

	d.Show(domain.Item{ID: "g1", Title: "Celeste"}, domain.CategoryGames)
	d.SetDetail("g1", domain.Detail{Developer: "Maddy Makes Games"})
	body = d.renderBody(100)
	if !strings.Contains(body, "Maddy Makes Games") || !strings.Contains(body, "Unknown") {
		t.Fatalf("game body should show developer and unknown publisher:\n%s", body)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "N/A"},
		{-5, "N/A"},
		{60_000_000, "$60.0M"},
		{187_436_818, "$187.4M"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Fatalf("FormatMoney(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
