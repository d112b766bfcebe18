// Package navigation builds the page title, breadcrumbs and menu of a page.
package navigation

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is an entry of the top menu. Permission is empty for entries
// every user sees.
type MenuItem struct {
	Title      string
	URL        string
	Section    string
	Permission string
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	Menu          []MenuItem
	PageTitle     string
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithMenu keeps the entries of items the user is allowed to see.
func (c *Context) WithMenu(items []MenuItem, allowed func(permission string) bool) *Context {
	c.Menu = c.Menu[:0]

	for _, item := range items {
		if item.Permission == "" || (allowed != nil && allowed(item.Permission)) {
			c.Menu = append(c.Menu, item)
		}
	}

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
