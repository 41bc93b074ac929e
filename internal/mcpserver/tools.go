package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/persist"
	"github.com/kayz/promptblocks/internal/workspace"
	"github.com/mark3labs/mcp-go/mcp"
)

// Library lists saved templates.
type Library interface {
	ListTemplates(category string) ([]*persist.Template, error)
}

// Tools implements the MCP tool handlers over one workspace.
type Tools struct {
	ws      *workspace.Workspace
	library Library
}

func NewTools(ws *workspace.Workspace, library Library) *Tools {
	return &Tools{ws: ws, library: library}
}

func stringArg(req mcp.CallToolRequest, name string) (string, bool) {
	v, ok := req.Params.Arguments[name].(string)
	return v, ok
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

type blockSummary struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (t *Tools) blocksResult() (*mcp.CallToolResult, error) {
	snap := t.ws.Snapshot()
	out := make([]blockSummary, 0, len(snap.Blocks))
	for _, b := range snap.Blocks {
		out = append(out, blockSummary{ID: b.ID, Type: b.TypeID, Name: b.Name, Content: b.Content})
	}
	return jsonResult(map[string]any{"category": snap.Category, "blocks": out})
}

// ListBlockTypes returns the block type catalog and template categories
func (t *Tools) ListBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"types":      t.ws.Registry().Types(),
		"categories": workspace.Categories,
	})
}

// ShowBlocks returns the current block sequence
func (t *Tools) ShowBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.blocksResult()
}

// AddBlock appends a block, optionally with initial content
func (t *Tools) AddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeID, ok := stringArg(req, "type")
	if !ok || strings.TrimSpace(typeID) == "" {
		return mcp.NewToolResultError("type is required"), nil
	}
	id := blocks.NewID()
	cmds := []blocks.Command{blocks.AddBlock{TypeID: strings.TrimSpace(typeID), ID: id}}
	if content, ok := stringArg(req, "content"); ok {
		cmds = append(cmds, blocks.UpdateContent{ID: id, Content: content})
	}
	t.ws.Apply(cmds...)
	return t.blocksResult()
}

// RemoveBlock deletes a block by id
func (t *Tools) RemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("id is required"), nil
	}
	t.ws.Apply(blocks.RemoveBlock{ID: id})
	return t.blocksResult()
}

// UpdateBlock replaces a block's content
func (t *Tools) UpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("id is required"), nil
	}
	content, ok := stringArg(req, "content")
	if !ok {
		return mcp.NewToolResultError("content is required"), nil
	}
	t.ws.Apply(blocks.UpdateContent{ID: id, Content: content})
	return t.blocksResult()
}

// MoveBlock moves a block one position up or down
func (t *Tools) MoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(req, "id")
	if !ok {
		return mcp.NewToolResultError("id is required"), nil
	}
	direction, _ := stringArg(req, "direction")
	switch direction {
	case "up":
		t.ws.Apply(blocks.MoveUp{ID: id})
	case "down":
		t.ws.Apply(blocks.MoveDown{ID: id})
	default:
		return mcp.NewToolResultError("direction must be \"up\" or \"down\""), nil
	}
	return t.blocksResult()
}

// ReorderBlocks moves source to target's position
func (t *Tools) ReorderBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, ok := stringArg(req, "source_id")
	if !ok {
		return mcp.NewToolResultError("source_id is required"), nil
	}
	target, ok := stringArg(req, "target_id")
	if !ok {
		return mcp.NewToolResultError("target_id is required"), nil
	}
	t.ws.Apply(blocks.Reorder{SourceID: source, TargetID: target})
	return t.blocksResult()
}

// Undo reverts the last change to the blocks
func (t *Tools) Undo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.ws.Undo() {
		return mcp.NewToolResultError("nothing to undo"), nil
	}
	return t.blocksResult()
}

// SetCategory selects the template category
func (t *Tools) SetCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, _ := stringArg(req, "category")
	if err := t.ws.SetCategory(category); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Category set to " + category), nil
}

// RenderPrompt returns the serialized prompt without sending it
func (t *Tools) RenderPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(t.ws.Prompt()), nil
}

// Generate submits the prompt and waits for its outcome
func (t *Tools) Generate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := t.ws.Generate()
	state, err := t.ws.Client().Wait(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if state.Token != token {
		return mcp.NewToolResultError("generation was superseded by a newer request"), nil
	}
	if state.Phase == generation.PhaseFailed {
		return mcp.NewToolResultError(state.Message), nil
	}
	return mcp.NewToolResultText(state.Text), nil
}

// SaveTemplate stores the current blocks under a name
func (t *Tools) SaveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := stringArg(req, "name")
	tpl, err := t.ws.SaveTemplate(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save template: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved template %q (%s, %d blocks)", tpl.Name, tpl.Category, len(tpl.Blocks))), nil
}

// LoadTemplate replaces the blocks with a saved template
func (t *Tools) LoadTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, ok := stringArg(req, "name")
	if !ok {
		return mcp.NewToolResultError("name is required"), nil
	}
	if _, err := t.ws.LoadTemplate(name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load template: %v", err)), nil
	}
	return t.blocksResult()
}

// ListTemplates lists saved templates, optionally by category
func (t *Tools) ListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.library == nil {
		return mcp.NewToolResultError("template store is not configured"), nil
	}
	category, _ := stringArg(req, "category")
	list, err := t.library.ListTemplates(category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list templates: %v", err)), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No templates saved"), nil
	}
	var sb strings.Builder
	for _, tpl := range list {
		fmt.Fprintf(&sb, "%s [%s] %d blocks, updated %s\n", tpl.Name, tpl.Category, len(tpl.Blocks), tpl.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}
