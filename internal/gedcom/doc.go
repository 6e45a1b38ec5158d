// Package gedcom holds the small amount of GEDCOM line handling the site needs:
// splitting a level 0 record into facts, rewriting facts, building records from
// edit forms and reading the editable parts of a media object.
package gedcom
