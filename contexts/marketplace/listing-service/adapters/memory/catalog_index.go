package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"autoboard/contexts/marketplace/listing-service/domain/entities"
)

// CatalogIndex is an in-process stand-in for the public search index.
type CatalogIndex struct {
	mu   sync.RWMutex
	docs map[string]entities.Listing
}

func NewCatalogIndex() *CatalogIndex {
	return &CatalogIndex{docs: make(map[string]entities.Listing)}
}

func (i *CatalogIndex) SyncListing(_ context.Context, listing entities.Listing) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !listing.IsPublic() {
		delete(i.docs, listing.ListingID)
		return nil
	}
	i.docs[listing.ListingID] = listing
	return nil
}

func (i *CatalogIndex) RemoveListing(_ context.Context, listingID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.docs, strings.TrimSpace(listingID))
	return nil
}

func (i *CatalogIndex) IndexedIDs() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ids := make([]string, 0, len(i.docs))
	for id := range i.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
