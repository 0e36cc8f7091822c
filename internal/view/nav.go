package view

import "strings"

// NavItem is one link of the top navigation.
type NavItem struct {
	Name   string
	Href   string
	Right  bool
	Active bool
}

// NavItems builds the top navigation. Logged-in sessions get a profile
// link labelled with the username; others get a login link.
func NavItems(loggedIn bool, username, path string) []NavItem {
	items := []NavItem{{Name: "Pony Express", Href: "/"}}
	if loggedIn {
		items = append(items, NavItem{Name: username, Href: "/profile", Right: true})
	} else {
		items = append(items, NavItem{Name: "Login", Href: "/login", Right: true})
	}

	for i := range items {
		items[i].Active = isActive(items[i].Href, path)
	}
	return items
}

// isActive matches "/" exactly and any other href by path segment prefix.
func isActive(href, path string) bool {
	if href == "/" {
		return path == "/"
	}
	return path == href || strings.HasPrefix(path, href+"/")
}
