package model

import "strings"

// Site associates a URL pattern with an ordered set of templates.
type Site struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// URIPattern is matched literally except for "*", which matches any
	// sequence.
	URIPattern string `json:"uriPattern"`
	// TemplateIDs are weak references; deleting a template leaves its id
	// here.
	TemplateIDs []string `json:"templateIds"`
}

// Normalize fills in fields that older or partial documents may lack.
func (s *Site) Normalize() {
	if s.TemplateIDs == nil {
		s.TemplateIDs = []string{}
	}
}

// Validate checks the fields required to save a site.
func (s Site) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(s.URIPattern) == "" {
		missing = append(missing, "uriPattern")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "Site Name and URI Pattern are required."}
	}
	return nil
}

// FindSite returns the site with the given id from all.
func FindSite(all []Site, id string) (Site, bool) {
	for _, s := range all {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}
