package cmd

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestPrinterFormats(t *testing.T) {
	value := map[string]string{"location": "Ramallah"}

	tests := []struct {
		format string
		want   string
	}{
		{format: "json", want: "\"location\": \"Ramallah\""},
		{format: "YAML", want: "location: Ramallah"},
		{format: "", want: "text Ramallah"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := newPrinter(tt.format)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var buf bytes.Buffer
			p.w = &buf

			err = p.print(value, func(w io.Writer) {
				io.WriteString(w, "text "+value["location"])
			})
			if err != nil {
				t.Fatalf("print: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, buf.String())
			}
		})
	}

	if _, err := newPrinter("xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := terminalNotifier{w: &buf}

	n.Success("ranked 2 postings by compatibility")
	n.Failure(errors.New("bad status: 500"))

	want := "ranked 2 postings by compatibility\nranking failed: bad status: 500\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestCriteriaMergesFlags(t *testing.T) {
	cfg := &FiltersConfig{Location: "Ramallah", Days: []string{"Monday"}}
	flags := &FiltersConfig{Experience: "barista", Days: []string{"saturday", "Sunday"}}

	got, err := criteria(cfg, flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location != "Ramallah" || got.Experience != "barista" {
		t.Fatalf("unexpected criteria: %+v", got)
	}
	if got.Days.Len() != 2 {
		t.Fatalf("flag days must replace configured days, got %v", got.Days.Active())
	}

	if _, err := criteria(&FiltersConfig{Days: []string{"Someday"}}, nil); err == nil {
		t.Fatalf("expected error for unknown day")
	}
}

func TestParseAvailability(t *testing.T) {
	got, err := parseAvailability(map[string]string{"monday": " 9am-5pm ", "Saturday": "10-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["Monday"] != "9am-5pm" || got["Saturday"] != "10-2" {
		t.Fatalf("unexpected availability: %v", got)
	}

	if _, err := parseAvailability(map[string]string{"Funday": "1-2"}); err == nil {
		t.Fatalf("expected error for unknown day")
	}
	if _, err := parseAvailability(map[string]string{"Monday": " "}); err == nil {
		t.Fatalf("expected error for empty range")
	}
}
