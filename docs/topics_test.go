package docs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Info strings of the fenced blocks executed by TestExamples.
const (
	setupFence  = "bash setup"    // starts a scenario in a fresh folder
	runFence    = "bash run"      // its output is kept for the next output block
	checkFence  = "bash check"    // must succeed
	outputFence = "console check" // what the last run printed
)

// topicLine matches the topic bullets of readme.md: "* name: description".
var topicLine = regexp.MustCompile(`^\* ([a-z-]+):`)

func TestReadmeListsEveryTopic(t *testing.T) {
	readme, err := GetTopic("readme")
	if err != nil {
		t.Fatalf("GetTopic(readme) unexpected error: %v", err)
	}
	var listed []string
	for line := range strings.Lines(readme) {
		if m := topicLine.FindStringSubmatch(line); m != nil {
			listed = append(listed, m[1])
		}
	}
	slices.Sort(listed)

	embedded, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() unexpected error: %v", err)
	}
	if diff := cmp.Diff(embedded, listed); diff != "" {
		t.Errorf("topics of readme.md mismatch (-embedded +listed):\n%s", diff)
	}
	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) unexpected error: %v", topic, err)
		}
	}
}

func TestGetTopic(t *testing.T) {
	all, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) unexpected error: %v", err)
	}
	topics, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() unexpected error: %v", err)
	}
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			t.Fatalf("GetTopic(%q) unexpected error: %v", topic, err)
		}
		if !strings.Contains(all, content) {
			t.Errorf("GetTopic(*) does not include the %q topic", topic)
		}
	}
	if _, err := GetTopic("budgets"); err == nil {
		t.Errorf("GetTopic(budgets) = nil error, want topic not found")
	}
}

// TestExamples runs the shell examples of the documentation against a fresh
// moola binary, so that the documented output stays true.
func TestExamples(t *testing.T) {
	docs, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	docs = append(docs, "../README.md")

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "moola"), "../moola/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("cannot build moola: %v\n%s", err, out)
	}
	env := append(os.Environ(),
		fmt.Sprintf("PATH=%s%c%s", bin, os.PathListSeparator, os.Getenv("PATH")),
		"MOOLA_TESTING_NOW=2025-03-12 10:00:00",
		"MOOLA_DATA_DIR=.moola",
		"MOOLA_STORE=file",
		"MOOLA_SECURE_KEY=",
		"MOOLA_CURRENCY=",
		"TZ=UTC",
	)

	for _, doc := range docs {
		t.Run(filepath.Base(doc), func(t *testing.T) {
			s := scenario{env: env, dir: t.TempDir()}
			for _, ex := range examples(t, doc) {
				s.play(t, ex)
			}
		})
	}
}

// example is an executable fenced block of a document.
type example struct {
	kind   string
	script string
	pos    string // file:line of the fence
}

// examples returns the executable fenced blocks of a markdown document, in order.
func examples(t *testing.T, doc string) []example {
	t.Helper()
	src, err := os.ReadFile(doc)
	if err != nil {
		t.Fatalf("cannot read %s: %v", doc, err)
	}
	var list []example
	err = ast.Walk(goldmark.DefaultParser().Parse(text.NewReader(src)), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		block, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || block.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(block.Info.Segment.Value(src))
		switch kind {
		case setupFence, runFence, checkFence, outputFence:
		default:
			return ast.WalkContinue, nil
		}
		var script bytes.Buffer
		lines := block.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			script.Write(seg.Value(src))
		}
		line := 1 + bytes.Count(src[:block.Info.Segment.Start], []byte("\n"))
		list = append(list, example{kind: kind, script: script.String(), pos: fmt.Sprintf("%s:%d", doc, line)})
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("cannot walk %s: %v", doc, err)
	}
	return list
}

// scenario plays the examples of a document one after the other, sharing a
// data folder until the next setup block.
type scenario struct {
	env    []string
	dir    string
	output string // of the last run block
}

func (s *scenario) play(t *testing.T, ex example) {
	t.Helper()
	if ex.kind == outputFence {
		got := strings.ReplaceAll(strings.TrimSpace(s.output), "\t", "        ")
		if want := strings.TrimSpace(ex.script); got != want {
			t.Errorf("%s: moola printed:\n\n%s\n\nwant:\n\n%s\n\ngot  %q\nwant %q", ex.pos, got, want, got, want)
		}
		return
	}
	if ex.kind == setupFence {
		s.dir, s.output = t.TempDir(), ""
	}

	sh := exec.Command("bash", "-c", "set -e; "+ex.script)
	sh.Dir, sh.Env = s.dir, s.env
	output, err := sh.CombinedOutput()
	if ex.kind == runFence {
		s.output = string(output)
	}
	switch {
	case err == nil:
	case ex.kind == checkFence:
		t.Errorf("%s: check failed: %v\n%s", ex.pos, err, output)
	default:
		t.Fatalf("%s: %s failed: %v\n%s", ex.pos, ex.kind, err, output)
	}
}
