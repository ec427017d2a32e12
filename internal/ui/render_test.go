package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/five82/vws/vws"
)

func TestRenderer_Record(t *testing.T) {
	r := NewRenderer("Slate")
	out := r.Record(&vws.TargetStatusAndRecord{
		Status: vws.StatusProcessing,
		TargetRecord: vws.TargetRecord{
			TargetID:       "abc123",
			Name:           "widget",
			Width:          1.5,
			ActiveFlag:     true,
			TrackingRating: -1,
		},
	})
	for _, want := range []string{"abc123", "widget", "1.5", "processing", "active", "not rated"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Record output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_IDs(t *testing.T) {
	r := NewRenderer("")
	if out := r.IDs("Targets", nil); !strings.Contains(out, "Targets (0)") || !strings.Contains(out, "none") {
		t.Fatalf("IDs(empty) = %q", out)
	}
	out := r.IDs("Duplicates", []string{"a", "b"})
	if !strings.Contains(out, "Duplicates (2)") || !strings.Contains(out, "  a") {
		t.Fatalf("IDs = %q", out)
	}
}

func TestRenderer_Matches(t *testing.T) {
	r := NewRenderer("")
	if out := r.Matches(nil); !strings.Contains(out, "no match") {
		t.Fatalf("Matches(nil) = %q", out)
	}
	four := 4
	out := r.Matches([]vws.QueryResult{
		{TargetID: "a", TargetData: &vws.TargetData{Name: "alpha", ApplicationMetadata: []byte("meta"), TargetTimestamp: time.Unix(0, 0).UTC(), TrackingRating: &four}},
		{TargetID: "b"},
	})
	for _, want := range []string{"Match 1", "alpha", "meta", "4/5", "Match 2", "b"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Matches output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_ErrorShowsResponse(t *testing.T) {
	r := NewRenderer("")
	resp := &vws.Response{
		StatusCode: http.StatusNotFound,
		Body:       []byte(`{"result_code":"UnknownTarget"}`),
		Method:     http.MethodDelete,
		URL:        "https://vws.vuforia.com/targets/abc",
	}
	err := fmt.Errorf("delete: %w", &vws.Error{Kind: vws.KindUnknownTarget, Op: "delete target", Response: resp})
	out := r.Error(err)
	for _, want := range []string{"UnknownTarget", "404", "DELETE /targets/abc", `"result_code":"UnknownTarget"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("Error output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_ErrorPlainAndWait(t *testing.T) {
	r := NewRenderer("")
	if out := r.Error(nil); out != "" {
		t.Fatalf("Error(nil) = %q, want empty", out)
	}
	if out := r.Error(errors.New("boom")); !strings.Contains(out, "boom") {
		t.Fatalf("Error(plain) = %q", out)
	}
	out := r.Error(&vws.TargetProcessingTimeoutError{TargetID: "abc", LastStatus: vws.StatusProcessing, Attempts: 7})
	if !strings.Contains(out, "TargetProcessingTimeout") || !strings.Contains(out, "7") {
		t.Fatalf("Error(wait) = %q", out)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("  a \n b  "); got != "a b" {
		t.Fatalf("excerpt = %q, want %q", got, "a b")
	}
	if got := excerpt(""); got != "-" {
		t.Fatalf("excerpt(empty) = %q, want -", got)
	}
	long := strings.Repeat("x", bodyExcerptLimit+10)
	if got := excerpt(long); len(got) != bodyExcerptLimit+3 {
		t.Fatalf("excerpt(long) length = %d, want %d", len(got), bodyExcerptLimit+3)
	}
}
