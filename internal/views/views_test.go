package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestMessagePageEscapes(t *testing.T) {
	var buf bytes.Buffer
	if err := MessagePage("Invalid Link", `<b>bad</b> & "worse"`, ToneError).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "<b>bad</b>") {
		t.Error("Expected message to be escaped")
	}
	if !strings.Contains(out, "&lt;b&gt;bad&lt;/b&gt;") {
		t.Errorf("Escaped message missing from %q", out)
	}
	if !strings.Contains(out, "border-red-500") || strings.Contains(out, "border-orange-500") {
		t.Error("Expected the error tone to replace the default border colour")
	}
}

func TestPreferencesPageMarksSelection(t *testing.T) {
	var buf bytes.Buffer
	form := PreferencesForm{
		Token:     "tok-123",
		CSRFToken: "csrf-abc",
		Frequency: "monthly",
		Topics:    []string{"podcast", "blog"},
		Format:    "text",
	}
	if err := PreferencesPage(form).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`name="frequency" value="monthly" checked`,
		`name="topics" value="podcast" checked`,
		`name="topics" value="blog" checked`,
		`name="format" value="text" checked`,
		`name="gorilla.csrf.Token" value="csrf-abc"`,
		`name="token" value="tok-123"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output", want)
		}
	}
	if strings.Contains(out, `value="weekly" checked`) || strings.Contains(out, `value="all" checked`) {
		t.Error("Unselected options are marked checked")
	}
}

func TestUnsubscribePageCarriesTokens(t *testing.T) {
	var buf bytes.Buffer
	if err := UnsubscribePage("a&b", "csrf-xyz").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`name="gorilla.csrf.Token" value="csrf-xyz"`,
		`name="token" value="a&amp;b"`,
		`href="/preferences?token=a%26b"`,
		`action="/unsubscribe"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output", want)
		}
	}
}

func TestClassesLaterWins(t *testing.T) {
	got := Classes("px-2 py-1 bg-orange-600", "bg-red-600")
	if strings.Contains(got, "bg-orange-600") || !strings.Contains(got, "bg-red-600") {
		t.Errorf("Classes() = %q", got)
	}
}
