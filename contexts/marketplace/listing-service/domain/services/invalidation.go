package services

import "strings"

var publicCatalogPaths = []string{
	"/",
	"/listings",
	"/listings/search",
}

var adminPaths = []string{
	"/admin",
	"/admin/listings",
	"/admin/moderation",
}

// InvalidationPaths returns every cached path affected by a change to the
// given listing: public catalog pages, admin views and the detail page.
func InvalidationPaths(listingID string) []string {
	paths := make([]string, 0, len(publicCatalogPaths)+len(adminPaths)+1)
	paths = append(paths, publicCatalogPaths...)
	paths = append(paths, adminPaths...)
	if id := strings.TrimSpace(listingID); id != "" {
		paths = append(paths, ListingDetailPath(id))
	}
	return paths
}

func ListingDetailPath(listingID string) string {
	return "/listings/" + strings.TrimSpace(listingID)
}

const ModerationQueuePath = "/admin/moderation"
