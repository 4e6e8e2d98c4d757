package category

import (
	"regexp"
	"strings"
)

// Category groups products in the storefront navigation. Position orders the
// menu; categories with the same position fall back to name order.
type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	ImageRef    string
	Position    int
	IsActive    bool
}

type ListFilter struct {
	OnlyActive bool
}

var (
	slugRegexp   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL slug from a category name: "Fans & Coolers" becomes
// "fans-coolers".
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}

func ValidSlug(slug string) bool {
	return len(slug) <= 255 && slugRegexp.MatchString(slug)
}
