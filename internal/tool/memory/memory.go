// Package memory exposes the memory backend to the model as tools.
package memory

import (
	"context"
	"fmt"
	"strings"

	memstore "github.com/Cyclone1070/claw/internal/memory"
	"github.com/Cyclone1070/claw/internal/tool"
)

// quota charges mutating memory operations.
type quota interface {
	AuthorizeMutation(subject string, costCents int) error
}

const defaultRecallLimit = 5

// -- memory_store --

type StoreRequest struct {
	Key      string `json:"key"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// StoreTool saves a fact under a key.
type StoreTool struct {
	store  memstore.Store
	policy quota
}

func NewStoreTool(store memstore.Store, policy quota) *StoreTool {
	if store == nil {
		panic("store is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &StoreTool{store: store, policy: policy}
}

func (t *StoreTool) Name() string { return "memory_store" }

func (t *StoreTool) Description() string {
	return "Store a fact, preference or note in long-term memory. Storing under an existing key replaces it."
}

func (t *StoreTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"key":      {Type: tool.TypeString, Description: "Unique key, e.g. user_language"},
			"content":  {Type: tool.TypeString, Description: "The information to remember"},
			"category": {Type: tool.TypeString, Description: "core (default), daily, conversation, or a custom category"},
		},
		Required: []string{"key", "content"},
	}
}

func (t *StoreTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req StoreRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		return tool.Fail(&tool.ValidationError{Field: "key", Reason: "cannot be empty"})
	}
	if req.Content == "" {
		return tool.Fail(&tool.ValidationError{Field: "content", Reason: "cannot be empty"})
	}

	if err := t.policy.AuthorizeMutation("memory:"+req.Key, 0); err != nil {
		return tool.Fail(err)
	}
	category := memstore.ParseCategory(req.Category)
	if err := t.store.Store(ctx, req.Key, req.Content, category); err != nil {
		return tool.Failf("failed to store memory: %v", err)
	}
	return tool.OK(fmt.Sprintf("Stored memory: %s (%s)", req.Key, category))
}

// -- memory_recall --

type RecallRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// RecallTool searches memory by keywords.
type RecallTool struct {
	store memstore.Store
}

func NewRecallTool(store memstore.Store) *RecallTool {
	if store == nil {
		panic("store is required")
	}
	return &RecallTool{store: store}
}

func (t *RecallTool) Name() string { return "memory_recall" }

func (t *RecallTool) Description() string {
	return "Search long-term memory for facts relevant to a query. Returns the best matches first."
}

func (t *RecallTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"query": {Type: tool.TypeString, Description: "Keywords to search for"},
			"limit": {Type: tool.TypeInteger, Description: fmt.Sprintf("Maximum results (default %d)", defaultRecallLimit)},
		},
		Required: []string{"query"},
	}
}

func (t *RecallTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req RecallRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	if strings.TrimSpace(req.Query) == "" {
		return tool.Fail(&tool.ValidationError{Field: "query", Reason: "cannot be empty"})
	}
	if req.Limit <= 0 {
		req.Limit = defaultRecallLimit
	}

	entries, err := t.store.Recall(ctx, req.Query, req.Limit)
	if err != nil {
		return tool.Failf("failed to recall memories: %v", err)
	}
	if len(entries) == 0 {
		return tool.OK("No memories found matching that query.")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d memories:\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "- [%s] %s: %s (score %.0f%%)\n", e.Category, e.Key, e.Content, e.Score*100)
	}
	return tool.OK(strings.TrimSuffix(sb.String(), "\n"))
}

// -- memory_forget --

type ForgetRequest struct {
	Key string `json:"key"`
}

// ForgetTool deletes a memory by key.
type ForgetTool struct {
	store  memstore.Store
	policy quota
}

func NewForgetTool(store memstore.Store, policy quota) *ForgetTool {
	if store == nil {
		panic("store is required")
	}
	if policy == nil {
		panic("policy is required")
	}
	return &ForgetTool{store: store, policy: policy}
}

func (t *ForgetTool) Name() string { return "memory_forget" }

func (t *ForgetTool) Description() string {
	return "Remove a memory by key. Use when information is outdated or the user asks to forget it."
}

func (t *ForgetTool) Parameters() *tool.Schema {
	return &tool.Schema{
		Type: tool.TypeObject,
		Properties: map[string]*tool.Schema{
			"key": {Type: tool.TypeString, Description: "Key of the memory to forget"},
		},
		Required: []string{"key"},
	}
}

func (t *ForgetTool) Execute(ctx context.Context, args map[string]any) tool.Result {
	var req ForgetRequest
	if err := tool.DecodeArgs(args, &req); err != nil {
		return tool.Fail(err)
	}
	if req.Key == "" {
		return tool.Fail(&tool.ValidationError{Field: "key", Reason: "cannot be empty"})
	}
	if err := t.policy.AuthorizeMutation("memory:"+req.Key, 0); err != nil {
		return tool.Fail(err)
	}

	removed, err := t.store.Forget(ctx, req.Key)
	if err != nil {
		return tool.Failf("failed to forget memory: %v", err)
	}
	if !removed {
		return tool.Failf("%s: %s", memstore.ErrNotFound, req.Key)
	}
	return tool.OK("Forgot memory: " + req.Key)
}

