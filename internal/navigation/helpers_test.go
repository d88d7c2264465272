package navigation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// fakeSource serves fixed child lists by node id and records every call.
type fakeSource struct {
	mu       sync.Mutex
	children map[string][]domain.Node
	calls    []ports.LoadRequest
	fail     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{children: make(map[string][]domain.Node)}
}

func (s *fakeSource) set(id string, nodes ...domain.Node) {
	s.children[id] = nodes
}

func (s *fakeSource) Load(ctx context.Context, req ports.LoadRequest) (ports.LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.fail != nil {
		return ports.LoadResult{}, s.fail
	}
	all := s.children[req.NodeID]
	if req.Offset >= len(all) {
		return ports.LoadResult{}, nil
	}
	end := min(req.Offset+req.Limit, len(all))
	return ports.LoadResult{Nodes: all[req.Offset:end], HasMore: end < len(all)}, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSource) lastCall() ports.LoadRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

// fakeRenderer records delivered views.
type fakeRenderer struct {
	views   []domain.View
	notices []string
	fail    error
}

func (r *fakeRenderer) Render(ctx context.Context, target domain.Target, view domain.View) (domain.MessageRef, error) {
	if r.fail != nil {
		return domain.MessageRef{}, r.fail
	}
	r.views = append(r.views, view)
	return domain.MessageRef{ChatID: target.ChatID, MessageID: len(r.views)}, nil
}

func (r *fakeRenderer) Notify(ctx context.Context, target domain.Target, text string) error {
	r.notices = append(r.notices, text)
	return nil
}

func (r *fakeRenderer) last() domain.View {
	return r.views[len(r.views)-1]
}

var errBackend = errors.New("backend down")

func nodes(prefix string, n int) []domain.Node {
	out := make([]domain.Node, n)
	for i := range out {
		id := fmt.Sprintf("%s%d", prefix, i)
		out[i] = domain.Node{ID: id, Content: domain.Content{Text: "node " + id, Label: id}}
	}
	return out
}

func root() domain.Node {
	return domain.Node{ID: "root", Content: domain.Content{Text: "Root"}}
}

// childLabels returns the captions of descend buttons in display order.
func childLabels(v domain.View) []string {
	var out []string
	for _, b := range v.Keyboard.Buttons() {
		if b.Action.Kind == domain.ActionDescend {
			out = append(out, b.Label)
		}
	}
	return out
}

func hasControl(v domain.View, kind domain.ActionKind) bool {
	for _, b := range v.Keyboard.Buttons() {
		if b.Action.Kind == kind {
			return true
		}
	}
	return false
}

var target = domain.Target{ChatID: 1, UserID: 1}
