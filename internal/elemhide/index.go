// Package elemhide implements the ElemHide index: element-hiding filters
// and their exceptions, keyed for per-domain selector lookup (spec.md §4.8).
package elemhide

import (
	"fmt"

	"github.com/quailmark/abpcore/internal/filter"
)

// Index tracks element-hiding filters and their exceptions.
type Index struct {
	elemFilters          map[string]*filter.Filter
	knownExceptions      map[string]bool
	exceptionsBySelector map[string][]*filter.Filter
}

// New creates an empty Index.
func New() *Index {
	return &Index{
		elemFilters:          make(map[string]*filter.Filter),
		knownExceptions:      make(map[string]bool),
		exceptionsBySelector: make(map[string][]*filter.Filter),
	}
}

// Add inserts an ElemHide or ElemHideException filter. f must be one of
// those two kinds; any other kind is a caller error.
func (idx *Index) Add(f *filter.Filter) {
	switch f.Kind {
	case filter.KindElemHideException:
		if !idx.knownExceptions[f.Text] {
			idx.knownExceptions[f.Text] = true
			idx.exceptionsBySelector[f.Selector] = append(idx.exceptionsBySelector[f.Selector], f)
		}
	case filter.KindElemHide:
		idx.elemFilters[f.Text] = f
	default:
		panic(fmt.Sprintf("elemhide: Add called with non-elemhide filter kind %s", f.Kind))
	}
}

// Remove undoes a prior Add. Removing an exception erases the entire
// selector bucket it belonged to, matching the source's eager behavior;
// this is acceptable because in practice a selector carries at most one
// exception.
func (idx *Index) Remove(f *filter.Filter) {
	switch f.Kind {
	case filter.KindElemHideException:
		if idx.knownExceptions[f.Text] {
			delete(idx.knownExceptions, f.Text)
			delete(idx.exceptionsBySelector, f.Selector)
		}
	case filter.KindElemHide:
		delete(idx.elemFilters, f.Text)
	default:
		panic(fmt.Sprintf("elemhide: Remove called with non-elemhide filter kind %s", f.Kind))
	}
}

// GetException returns the exception (if any) covering f's selector and
// active on docDomain.
func (idx *Index) GetException(f *filter.Filter, docDomain string) *filter.Filter {
	for _, exc := range idx.exceptionsBySelector[f.Selector] {
		if !exc.Disabled() && exc.IsActiveOnDomain(docDomain) {
			return exc
		}
	}
	return nil
}

// GetSelectors returns the selectors of every ElemHide filter active on
// domain and not covered by an active exception. When specific is true,
// filters that apply to every domain by default are skipped, returning
// only selectors scoped to particular domains.
func (idx *Index) GetSelectors(domain string, specific bool) []string {
	var out []string
	for _, f := range idx.elemFilters {
		if f.Disabled() {
			continue
		}
		if specific && f.GetDomains().IsActiveOn("") {
			continue
		}
		if !f.IsActiveOnDomain(domain) {
			continue
		}
		if idx.GetException(f, domain) != nil {
			continue
		}
		out = append(out, f.Selector)
	}
	return out
}
