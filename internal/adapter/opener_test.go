package adapter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mmcdole/mediadeck/internal/domain"
)

func TestWebURL(t *testing.T) {
	tests := []struct {
		ref  domain.MediaRef
		want string
	}{
		{domain.MediaRef{Kind: domain.KindMovie, ID: 550}, "https://www.themoviedb.org/movie/550"},
		{domain.MediaRef{Kind: domain.KindSeries, ID: 1396}, "https://www.themoviedb.org/tv/1396"},
		{domain.MediaRef{Kind: domain.KindGame, ID: 3498}, "https://rawg.io/games/3498"},
	}
	for _, tt := range tests {
		got, err := WebURL(tt.ref)
		if err != nil || got != tt.want {
			t.Errorf("WebURL(%s) = %q, %v; want %q", tt.ref, got, err, tt.want)
		}
	}

	if _, err := WebURL(domain.MediaRef{Kind: "book", ID: 1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}

func TestDefaultOpenCommand(t *testing.T) {
	url := "https://rawg.io/games/1"
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{url}},
		{"windows", "cmd", []string{"/c", "start", "", url}},
		{"linux", "xdg-open", []string{url}},
		{"freebsd", "xdg-open", []string{url}},
	}
	for _, tt := range tests {
		name, args := defaultOpenCommand(tt.goos, url)
		if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
			t.Errorf("%s: got %s %v", tt.goos, name, args)
		}
	}
}

func TestOpener_ConfiguredCommand(t *testing.T) {
	o := NewOpener("firefox --new-tab", NullLogger())
	var gotName string
	var gotArgs []string
	o.start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	if err := o.Open(domain.MediaRef{Kind: domain.KindMovie, ID: 550}); err != nil {
		t.Fatal(err)
	}
	if gotName != "firefox" || !reflect.DeepEqual(gotArgs, []string{"--new-tab", "https://www.themoviedb.org/movie/550"}) {
		t.Fatalf("got %s %v", gotName, gotArgs)
	}
}
