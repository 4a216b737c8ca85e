// Copyright 2018 The rustc-perf Project Developers. All rights reserved.
// Use of this source code is governed by the MIT and Apache-2.0
// licenses; see the LICENSE-MIT and LICENSE-APACHE files.

package compare

// Categories maps benchmark names to their category.
type Categories map[string]Category

// ResolveCategories builds the category lookup from provider metadata.
// If the provider sends duplicate names, the last entry wins.
func ResolveCategories(meta []Metadata) Categories {
	c := make(Categories, len(meta))
	for _, m := range meta {
		c[m.Name] = m.Category
	}
	return c
}

// Get returns the category for a benchmark name. Names with no
// metadata are secondary.
func (c Categories) Get(name string) Category {
	if cat, ok := c[name]; ok {
		return cat
	}
	return CategorySecondary
}
