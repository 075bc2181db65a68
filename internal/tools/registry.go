package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

var ErrUnknownTool = errors.New("unknown tool")

// Registry indexes tools by their Info name.
type Registry struct {
	tools map[string]einotool.InvokableTool
}

func NewRegistry(ctx context.Context, ts ...einotool.InvokableTool) (*Registry, error) {
	r := &Registry{tools: make(map[string]einotool.InvokableTool, len(ts))}
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		if _, dup := r.tools[info.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", info.Name)
		}
		r.tools[info.Name] = t
	}
	return r, nil
}

// Infos lists every tool, sorted by name.
func (r *Registry) Infos(ctx context.Context) ([]*schema.ToolInfo, error) {
	out := make([]*schema.ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Registry) Invoke(ctx context.Context, name, argumentsInJSON string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.InvokableRun(ctx, argumentsInJSON)
}
