package handler

import "net/url"

// TreeURL returns the path of a page below a tree, e.g. TreeURL("family", "media/add").
func TreeURL(treeName, page string) string {
	return "/tree/" + url.PathEscape(treeName) + "/" + page
}

// RecordURL returns the path of a record page.
func RecordURL(treeName, xref string) string {
	return TreeURL(treeName, "record/"+url.PathEscape(xref))
}

// ModuleURL returns the path of a module action on a tree, with optional extra query parameters.
func ModuleURL(moduleName, action, treeName string, query ...string) string {
	v := url.Values{}
	if treeName != "" {
		v.Set(GedParam, treeName)
	}

	for i := 0; i+1 < len(query); i += 2 {
		v.Set(query[i], query[i+1])
	}

	u := "/module/" + moduleName + "/" + action
	if len(v) > 0 {
		u += "?" + v.Encode()
	}

	return u
}
