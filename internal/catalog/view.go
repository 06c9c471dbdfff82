package catalog

// View memoises the visible product list. The result is recomputed only
// when the catalog fingerprint or the criteria differ from the last call.
type View struct {
	fingerprint uint64
	criteria    FilterCriteria
	result      []Product
	valid       bool
	computes    int
}

// Visible returns the filtered and sorted products. Callers must not modify
// the returned slice.
func (v *View) Visible(c *Catalog, criteria FilterCriteria) []Product {
	if v.valid && v.fingerprint == c.Fingerprint() && v.criteria == criteria {
		return v.result
	}
	v.result = FilterAndSort(c.products, criteria)
	v.fingerprint = c.Fingerprint()
	v.criteria = criteria
	v.valid = true
	v.computes++
	return v.result
}

// Computes reports how many times the list has been recomputed.
func (v *View) Computes() int { return v.computes }
