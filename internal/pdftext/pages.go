package pdftext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/sift/internal/common"
)

// ParsePages expands a page selection such as "1-3,5" into page numbers.
// "all" or an empty selection means every page. Pages beyond total are
// skipped, so a selection entirely past the end yields an empty, non-nil
// slice. The result keeps the order of the selection without repeats.
func ParsePages(sel string, total int) ([]int, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" || strings.EqualFold(sel, "all") {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := make(map[int]bool)
	pages := []int{}
	add := func(p int) {
		if p > total || seen[p] {
			return
		}
		seen[p] = true
		pages = append(pages, p)
	}

	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		first, err := pageNumber(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: page selection %q: %v", common.ErrInvalidInput, sel, err)
		}
		last := first
		if isRange {
			if last, err = pageNumber(hi); err != nil {
				return nil, fmt.Errorf("%w: page selection %q: %v", common.ErrInvalidInput, sel, err)
			}
			if last < first {
				return nil, fmt.Errorf("%w: page selection %q: range %s is reversed", common.ErrInvalidInput, sel, part)
			}
		}

		for p := first; p <= last && p <= total; p++ {
			add(p)
		}
	}

	return pages, nil
}

func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a page number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page %d is before the first page", n)
	}
	return n, nil
}
