// Package mcpserver exposes a workspace as MCP tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "promptblocks"
	ServerVersion = "0.3.0"
)

// New registers every workspace tool on a fresh MCP server.
func New(t *Tools) *server.MCPServer {
	s := server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List the available block types and template categories"),
	), t.ListBlockTypes)

	s.AddTool(mcp.NewTool("show_blocks",
		mcp.WithDescription("Show the current prompt blocks in order"),
	), t.ShowBlocks)

	s.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Append a prompt block"),
		mcp.WithString("type", mcp.Required(), mcp.Description("Block type id, e.g. context or requirement")),
		mcp.WithString("content", mcp.Description("Initial block content")),
	), t.AddBlock)

	s.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("Remove a prompt block"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
	), t.RemoveBlock)

	s.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Replace the content of a prompt block"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
	), t.UpdateBlock)

	s.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a prompt block one position up or down"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
		mcp.WithString("direction", mcp.Required(), mcp.Enum("up", "down")),
	), t.MoveBlock)

	s.AddTool(mcp.NewTool("reorder_blocks",
		mcp.WithDescription("Move a block to the position currently held by another block"),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Block to move")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Block whose position it takes")),
	), t.ReorderBlocks)

	s.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Revert the last change to the blocks"),
	), t.Undo)

	s.AddTool(mcp.NewTool("set_category",
		mcp.WithDescription("Select the template category"),
		mcp.WithString("category", mcp.Required(), mcp.Enum("feature", "bugfix", "test")),
	), t.SetCategory)

	s.AddTool(mcp.NewTool("render_prompt",
		mcp.WithDescription("Render the prompt text the blocks serialize to"),
	), t.RenderPrompt)

	s.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Send the rendered prompt to the text-generation service and return its answer"),
	), t.Generate)

	s.AddTool(mcp.NewTool("save_template",
		mcp.WithDescription("Save the current blocks as a named template"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	), t.SaveTemplate)

	s.AddTool(mcp.NewTool("load_template",
		mcp.WithDescription("Replace the current blocks with a saved template"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	), t.LoadTemplate)

	s.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List saved templates"),
		mcp.WithString("category", mcp.Description("Only templates of this category")),
	), t.ListTemplates)

	return s
}

// ServeStdio runs the server on stdin/stdout until the input closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
