package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/labelkit/internal/fill"
	"github.com/ziadkadry99/labelkit/internal/model"
	"github.com/ziadkadry99/labelkit/internal/urlmatch"
)

// handleListTemplates summarises every stored template.
func (s *Server) handleListTemplates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.templates.Load(ctx)
	if len(list) == 0 {
		return mcp.NewToolResultText("No templates defined."), nil
	}
	return mcp.NewToolResultText(formatTemplates(list)), nil
}

// handleListSites summarises every stored site.
func (s *Server) handleListSites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.sites.Load(ctx)
	if len(list) == 0 {
		return mcp.NewToolResultText("No sites defined."), nil
	}
	all := s.templates.Load(ctx)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d site(s):\n", len(list)))
	for _, site := range list {
		found, missing := model.ResolveTemplates(site.TemplateIDs, all)
		sb.WriteString(fmt.Sprintf("\n- %s (%s)\n  Pattern: %s\n  Templates: %s\n",
			site.Name, site.ID, site.URIPattern, templateNames(found)))
		if len(missing) > 0 {
			sb.WriteString(fmt.Sprintf("  Missing templates: %s\n", strings.Join(missing, ", ")))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleMatchURL reports the first site matching a URL.
func (s *Server) handleMatchURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: url"), nil
	}

	site, ok := urlmatch.FirstMatch(s.sites.Load(ctx), url, s.log)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No site matches %s.", url)), nil
	}
	found, _ := model.ResolveTemplates(site.TemplateIDs, s.templates.Load(ctx))
	return mcp.NewToolResultText(fmt.Sprintf("Site matched: %s (%s)\nPattern: %s\nTemplates: %s\n",
		site.Name, site.ID, site.URIPattern, templateNames(found))), nil
}

// handleFillPreview runs the fill view headless and returns its print data
// as JSON.
func (s *Server) handleFillPreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: url"), nil
	}

	c := fill.New(s.templates, s.sites, nil, nil, s.log)
	c.Activate(ctx, fill.StaticTab(url))
	if id := request.GetString("template_id", ""); id != "" {
		if err := c.Select(id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("template %q is not offered for %s", id, url)), nil
		}
	}

	values, _ := request.GetArguments()["values"].(map[string]any)
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		text, ok := values[id].(string)
		if !ok {
			text = fmt.Sprint(values[id])
		}
		if _, err := c.SetText(id, text); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("setting %s: %v", id, err)), nil
		}
	}

	job, err := c.PrintData()
	if err != nil {
		return mcp.NewToolResultError(c.Render().Status), nil
	}
	out, err := json.MarshalIndent(map[string]interface{}{
		"template_id":   job.TemplateID,
		"template_name": job.TemplateName,
		"order":         job.Order,
		"data":          job.Data,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding print data: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func formatTemplates(list []model.Template) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d template(s):\n", len(list)))
	for _, t := range list {
		sb.WriteString(fmt.Sprintf("\n- %s (%s), %s\n", t.Name, t.ID, t.SizeLabel()))
		if t.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", t.Description))
		}
		for _, el := range t.Elements {
			sb.WriteString(fmt.Sprintf("  * %s %s\n", el.Kind(), el.ID))
		}
	}
	return sb.String()
}

func templateNames(list []model.Template) string {
	if len(list) == 0 {
		return "None"
	}
	names := make([]string, len(list))
	for i, t := range list {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
