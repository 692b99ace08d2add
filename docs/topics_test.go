package docs

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fenced code blocks executed by TestCodeBlocks, by info string.
const (
	bashSetup    = "bash setup"    // starts a scenario in a fresh directory
	bashRun      = "bash run"      // its output is compared to the next console check
	consoleCheck = "console check" // expected output of the last bash run
	bashCheck    = "bash check"    // must succeed
)

// TestTopics checks that docs/readme.md lists exactly the available topics.
func TestTopics(t *testing.T) {
	readme, err := os.ReadFile("readme.md")
	if err != nil {
		t.Fatalf("failed to read readme.md: %v", err)
	}
	var listed []string
	for _, m := range regexp.MustCompile(`(?m)^\*\s+([^:]+):`).FindAllSubmatch(readme, -1) {
		listed = append(listed, strings.TrimSpace(string(m[1])))
	}
	slices.Sort(listed)

	available, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() error = %v", err)
	}
	if diff := cmp.Diff(available, listed); diff != "" {
		t.Errorf("topics listed in readme.md mismatch (-available +listed):\n%s", diff)
	}
	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) error = %v", topic, err)
		}
	}
}

func TestGetTopic_All(t *testing.T) {
	topics, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() error = %v", err)
	}
	if diff := cmp.Diff([]string{"model", "server", "simulate"}, topics); diff != "" {
		t.Errorf("GetAllTopics() mismatch (-want +got):\n%s", diff)
	}

	all, err := GetTopic(All)
	if err != nil {
		t.Fatalf("GetTopic(%q) error = %v", All, err)
	}
	for _, heading := range []string{"# Model", "# Server", "# Simulate"} {
		if !strings.Contains(all, heading) {
			t.Errorf("GetTopic(%q) does not contain %q", All, heading)
		}
	}

	if _, err := GetTopic("dates"); err == nil {
		t.Error("GetTopic(dates) did not fail")
	}
}

// TestCodeBlocks runs the shell scenarios of the documentation against a
// freshly built retire binary.
func TestCodeBlocks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping documentation scenarios in short mode")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "retire"), "../retire/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build retire: %v\n%s", err, out)
	}
	// the environment must not change the documented defaults.
	env := append(os.Environ(),
		"PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"),
		"RETIRE_CURRENCY=USD",
		"RETIRE_ASSETS=",
		"LOG_LEVEL=info",
	)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s := scenario{env: env, dir: t.TempDir()}
			for _, b := range codeBlocks(t, file) {
				s.run(t, b)
			}
		})
	}
}

// block is a fenced code block of a markdown file.
type block struct {
	kind    string
	content string
	pos     string // file:line
}

// codeBlocks returns the executable blocks of a markdown file, in order.
func codeBlocks(t *testing.T, file string) []block {
	t.Helper()
	source, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}

	var blocks []block
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(source))
		switch kind {
		case bashSetup, bashRun, consoleCheck, bashCheck:
		default:
			return ast.WalkContinue, nil
		}
		var content strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			content.Write(line.Value(source))
		}
		// goldmark has no line numbers: count the newlines before the block.
		line := bytes.Count(source[:fcb.Info.Segment.Start], []byte{'\n'}) + 1
		blocks = append(blocks, block{
			kind:    kind,
			content: content.String(),
			pos:     file + ":" + strconv.Itoa(line),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// scenario is the state shared by the blocks of a markdown file.
type scenario struct {
	env    []string
	dir    string
	output string // of the last bash run
}

func (s *scenario) run(t *testing.T, b block) {
	t.Helper()
	if b.kind == consoleCheck {
		want := strings.TrimSpace(b.content)
		got := strings.ReplaceAll(strings.TrimSpace(s.output), "\t", "        ")
		if want != got {
			t.Errorf("%s: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q", b.pos, got, want, got, want)
		}
		return
	}
	if b.kind == bashSetup {
		s.dir = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+b.content)
	cmd.Dir = s.dir
	cmd.Env = s.env
	out, err := cmd.CombinedOutput()
	if b.kind == bashRun {
		s.output = string(out)
	}
	if err == nil {
		return
	}
	if b.kind == bashCheck {
		t.Errorf("%s: %s failed: %v with output:\n%s", b.pos, b.kind, err, out)
		return
	}
	t.Fatalf("%s: %s failed: %v with output:\n%s", b.pos, b.kind, err, out)
}
