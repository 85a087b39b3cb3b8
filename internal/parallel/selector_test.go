package parallel

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/vine-go/internal/vine"
)

func mustParse(t *testing.T, text string) *vine.Graph {
	t.Helper()
	g, err := vine.Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return g
}

func ids(tasks []vine.ConcreteTask) []string {
	var out []string
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

// releasePlan has three ready tasks: lint (one dependant, no priority),
// docs (@priority 2, no dependants) and api (@priority 1, two dependants).
const releasePlan = `vine 1.0.0
---
[design] Design (complete)
---
[lint] Lint (notstarted)
-> design
---
[docs] Docs (planning) @priority(2)
-> design
---
[api] API (started) @priority(1)
-> design
---
[stuck] Stuck (blocked)
-> design
---
ref [contract] Upstream contract (./contract.vine)
---
[client] Client (notstarted)
-> api
-> contract
---
[tests] Tests (notstarted)
-> api
-> lint
---
[ship] Ship (notstarted)
-> client
-> docs
-> stuck
-> tests
`

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"order", StrategyOrder, false},
		{"Priority", StrategyPriority, false},
		{"deps", StrategyUnblocking, false},
		{"mixed", StrategyMixed, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseStrategy(%q): got (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestTaskSelector_GetReadyTasks(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "release plan",
			text:     releasePlan,
			expected: []string{"lint", "docs", "api"},
		},
		{
			name:     "single incomplete task",
			text:     "vine 1.0.0\n---\n[only] Only (started)\n",
			expected: []string{"only"},
		},
		{
			name:     "everything complete",
			text:     "vine 1.0.0\n---\n[a] A (complete)\n---\n[b] B (complete)\n-> a\n",
			expected: nil,
		},
		{
			name:     "references never block",
			text:     "vine 1.0.0\n---\nref [up] Upstream (./up.vine)\n---\n[b] B (notstarted)\n-> up\n",
			expected: []string{"b"},
		},
		{
			name:     "reviewing tasks are ready",
			text:     "vine 1.0.0\n---\n[a] A (reviewing)\n",
			expected: []string{"a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTaskSelector(mustParse(t, tt.text), StrategyOrder)
			if diff := cmp.Diff(tt.expected, ids(s.getReadyTasks())); diff != "" {
				t.Errorf("ready tasks (-want +got):\n%s", diff)
			}
			if got := s.CountReady(); got != len(tt.expected) {
				t.Errorf("CountReady: got %d, want %d", got, len(tt.expected))
			}
		})
	}
}

func TestTaskSelector_SelectTasks(t *testing.T) {
	g := mustParse(t, releasePlan)

	tests := []struct {
		strategy Strategy
		n        int
		want     []string
	}{
		{StrategyOrder, 0, []string{"lint", "docs", "api"}},
		{StrategyPriority, 0, []string{"api", "docs", "lint"}},
		{StrategyUnblocking, 0, []string{"api", "lint", "docs"}},
		{StrategyMixed, 0, []string{"api", "docs", "lint"}},
		{StrategyUnblocking, 2, []string{"api", "lint"}},
		{StrategyOrder, 10, []string{"lint", "docs", "api"}},
	}
	for _, tt := range tests {
		got := ids(NewTaskSelector(g, tt.strategy).SelectTasks(tt.n))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s n=%d (-want +got):\n%s", tt.strategy, tt.n, diff)
		}
	}
}

func TestTaskSelector_MixedBreaksPriorityTiesByDependants(t *testing.T) {
	g := mustParse(t, `vine 1.0.0
---
[a] A (notstarted) @priority(1)
---
[b] B (notstarted) @priority(1)
---
[c] C (notstarted)
-> b
---
[root] Root (notstarted)
-> a
-> b
-> c
`)
	got := ids(NewTaskSelector(g, StrategyMixed).SelectTasks(0))
	if diff := cmp.Diff([]string{"b", "a"}, got); diff != "" {
		t.Errorf("mixed (-want +got):\n%s", diff)
	}
}

func TestTaskSelector_EmptySelection(t *testing.T) {
	g := mustParse(t, "vine 1.0.0\n---\n[a] A (complete)\n")
	if got := NewTaskSelector(g, StrategyPriority).SelectTasks(3); got != nil {
		t.Errorf("expected nil, got %v", ids(got))
	}
}
