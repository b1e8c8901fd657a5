package captions_test

import (
	"strings"
	"testing"

	"caption/internal/captions"
	"caption/internal/transcript"
)

func TestCompileThreeWordScenario(t *testing.T) {
	words := []transcript.Word{
		{Text: "Hello,", StartMS: 80, EndMS: 480},
		{Text: "big", StartMS: 480, EndMS: 720},
		{Text: "world.", StartMS: 720, EndMS: 1250},
	}

	program := captions.Compile(words, captions.StyleBox)
	if len(program.Cues) != 3 {
		t.Fatalf("cues = %d, want 3", len(program.Cues))
	}
	if program.Cues[0].Text != "HELLO" || program.Cues[2].Text != "WORLD" {
		t.Fatalf("unexpected cue text: %#v", program.Cues)
	}

	graph := program.FilterGraph()
	wantFragments := []string{
		"drawtext=text='HELLO'",
		"enable='between(t,0.08,0.48)'",
		"enable='between(t,0.72,1.25)'",
		"fontsize=h/25",
		"fontcolor=white",
		"x=(w-text_w)/2:y=(h-text_h)/2",
		"box=1:boxcolor=black@0.5:boxborderw=5",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(graph, fragment) {
			t.Errorf("filtergraph missing %q:\n%s", fragment, graph)
		}
	}
	if got := strings.Count(graph, "drawtext="); got != 3 {
		t.Fatalf("drawtext count = %d, want 3", got)
	}
}

func TestCompileSkipsInvalidAndEmptyWords(t *testing.T) {
	words := []transcript.Word{
		{Text: "keep", StartMS: 0, EndMS: 100},
		{Text: "backwards", StartMS: 300, EndMS: 200},
		{Text: "zero", StartMS: 400, EndMS: 400},
		{Text: ".,'\"", StartMS: 500, EndMS: 600},
	}
	program := captions.Compile(words, captions.StyleBox)
	if len(program.Cues) != 1 || program.Cues[0].Text != "KEEP" {
		t.Fatalf("cues = %#v", program.Cues)
	}
}

func TestEmptyProgram(t *testing.T) {
	program := captions.Compile(nil, captions.StyleBox)
	if !program.Empty() {
		t.Fatal("expected empty program")
	}
	if program.FilterGraph() != "" {
		t.Fatalf("filtergraph = %q", program.FilterGraph())
	}
	if program.EndMS() != 0 {
		t.Fatalf("end = %d", program.EndMS())
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{"Hello,", "don't", `"quoted"`, "10:30", "already CLEAN"}
	for _, input := range inputs {
		once := captions.Sanitize(input)
		twice := captions.Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
}

func TestFilterGraphEscapesColons(t *testing.T) {
	words := []transcript.Word{{Text: "10:30", StartMS: 0, EndMS: 500}}
	program := captions.Compile(words, captions.StyleBox)
	graph := program.FilterGraph()
	if !strings.Contains(graph, `text='10\:30'`) {
		t.Fatalf("expected escaped colon in %q", graph)
	}
}

func TestShadowStyleOmitsBox(t *testing.T) {
	words := []transcript.Word{{Text: "word", StartMS: 0, EndMS: 500}}
	graph := captions.Compile(words, captions.StyleShadow).FilterGraph()
	if strings.Contains(graph, "box=1") {
		t.Fatalf("shadow style should not draw boxes: %q", graph)
	}
	if !strings.Contains(graph, "shadowcolor=black@0.8") {
		t.Fatalf("missing shadow clause: %q", graph)
	}
}

func TestParseStyle(t *testing.T) {
	if style, err := captions.ParseStyle(" Box "); err != nil || style != captions.StyleBox {
		t.Fatalf("ParseStyle box = %q, %v", style, err)
	}
	if _, err := captions.ParseStyle("outline"); err == nil {
		t.Fatal("expected unknown style to be rejected")
	}
}
