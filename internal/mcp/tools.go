package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listTemplatesTool defines the list_templates MCP tool.
var listTemplatesTool = mcp.NewTool("list_templates",
	mcp.WithDescription("List the saved label templates with their size and elements."),
)

// listSitesTool defines the list_sites MCP tool.
var listSitesTool = mcp.NewTool("list_sites",
	mcp.WithDescription("List the site rules that map URL patterns to label templates."),
)

// matchURLTool defines the match_url MCP tool.
var matchURLTool = mcp.NewTool("match_url",
	mcp.WithDescription("Find the first site whose URI pattern matches a URL and the templates it offers."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("Page URL to match"),
	),
)

// fillPreviewTool defines the fill_preview MCP tool.
var fillPreviewTool = mcp.NewTool("fill_preview",
	mcp.WithDescription("Fill in the label offered for a URL and return the values that would be printed."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("Page URL to match"),
	),
	mcp.WithString("template_id",
		mcp.Description("Template to use instead of the site's first template"),
	),
	mcp.WithObject("values",
		mcp.Description("Text values keyed by Textbox element id"),
	),
)
