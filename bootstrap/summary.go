package bootstrap

import (
	"fmt"
	"io"
	"slices"
	"time"
)

// StepInfo describes one pipeline operator.
type StepInfo struct {
	Name   string
	Detail string
}

// ClientInfo describes the remote model client.
type ClientInfo struct {
	Name   string
	Target string
	Type   string // dialect, e.g. "openai"
}

// SettingInfo is one resolved run setting.
type SettingInfo struct {
	Key   string
	Value string
}

// ResultInfo holds the counts of a finished run.
type ResultInfo struct {
	Total     int
	Succeeded int
	Failed    int
	Peak      int
	Duration  time.Duration
	ByKind    map[string]int
}

// Summary tracks and displays the run plan and its result.
type Summary struct {
	serviceName string
	version     string
	out         io.Writer
	steps       []StepInfo
	clients     []ClientInfo
	settings    []SettingInfo
}

// NewSummary creates a summary printing to out.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// TrackStep records a pipeline operator in chain order.
func (s *Summary) TrackStep(name, detail string) {
	s.steps = append(s.steps, StepInfo{Name: name, Detail: detail})
}

// TrackClient records a model client.
func (s *Summary) TrackClient(name, target, clientType string) {
	s.clients = append(s.clients, ClientInfo{Name: name, Target: target, Type: clientType})
}

// TrackSetting records a resolved setting such as the worker count.
func (s *Summary) TrackSetting(key, value string) {
	s.settings = append(s.settings, SettingInfo{Key: key, Value: value})
}

// DisplayPlan prints the pipeline that is about to run.
func (s *Summary) DisplayPlan() {
	fmt.Fprintf(s.out, "\n🚀 %s %s\n\n", s.serviceName, s.version)

	if len(s.steps) > 0 {
		fmt.Fprintf(s.out, "📦 Pipeline\n")
		for i, st := range s.steps {
			detail := ""
			if st.Detail != "" {
				detail = fmt.Sprintf(" (%s)", st.Detail)
			}
			fmt.Fprintf(s.out, "   %s %d. %s%s\n", treePrefix(i, len(s.steps)), i+1, st.Name, detail)
		}
		fmt.Fprintf(s.out, "\n")
	}

	if len(s.clients) > 0 {
		fmt.Fprintf(s.out, "🔌 Model\n")
		for i, c := range s.clients {
			fmt.Fprintf(s.out, "   %s %s → %s [%s]\n", treePrefix(i, len(s.clients)), c.Name, c.Target, c.Type)
		}
		fmt.Fprintf(s.out, "\n")
	}

	if len(s.settings) > 0 {
		fmt.Fprintf(s.out, "⚙️  Settings\n")
		for i, st := range s.settings {
			fmt.Fprintf(s.out, "   %s %s: %s\n", treePrefix(i, len(s.settings)), st.Key, st.Value)
		}
		fmt.Fprintf(s.out, "\n")
	}
}

// DisplayResult prints the outcome counts of a finished run.
func (s *Summary) DisplayResult(r ResultInfo) {
	fmt.Fprintf(s.out, "\n📊 Results (%.2fs)\n", r.Duration.Seconds())
	fmt.Fprintf(s.out, "   ├── total: %d\n", r.Total)
	fmt.Fprintf(s.out, "   ├── %s succeeded: %d\n", statusIcon(true), r.Succeeded)

	kinds := make([]string, 0, len(r.ByKind))
	for k := range r.ByKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	prefix := "├──"
	if len(kinds) == 0 {
		prefix = "└──"
	}
	fmt.Fprintf(s.out, "   %s %s failed: %d\n", prefix, statusIcon(r.Failed == 0), r.Failed)
	for i, k := range kinds {
		fmt.Fprintf(s.out, "   %s    %s: %d\n", treePrefix(i, len(kinds)), k, r.ByKind[k])
	}

	if r.Failed == 0 {
		fmt.Fprintf(s.out, "\n✅ All records processed (%d/%d)\n\n", r.Succeeded, r.Total)
	} else {
		fmt.Fprintf(s.out, "\n⚠️  Some records failed (%d/%d succeeded)\n\n", r.Succeeded, r.Total)
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusIcon(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}
