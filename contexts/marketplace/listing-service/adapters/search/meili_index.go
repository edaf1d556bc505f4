package search

import (
	"context"
	"log/slog"
	"strings"

	"autoboard/contexts/marketplace/listing-service/domain/entities"

	"github.com/meilisearch/meilisearch-go"
)

const DefaultIndexUID = "listings"

// ListingDocument is the public projection of an active listing.
type ListingDocument struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	VehicleType  string  `json:"vehicle_type"`
	Price        float64 `json:"price"`
	Year         int     `json:"year"`
	Mileage      int     `json:"mileage"`
	FuelType     string  `json:"fuel_type,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	EngineSizeCC int     `json:"engine_size_cc,omitempty"`
	Location     string  `json:"location,omitempty"`
	CreatedAt    int64   `json:"created_at"`
}

type documentIndex interface {
	AddDocuments(documentsPtr interface{}, primaryKey ...string) (*meilisearch.TaskInfo, error)
	DeleteDocument(identifier string) (*meilisearch.TaskInfo, error)
}

// MeiliIndex keeps the Meilisearch catalog index in step with listing
// status: active listings are upserted, everything else is removed.
type MeiliIndex struct {
	client *meilisearch.Client
	uid    string
	index  documentIndex
	logger *slog.Logger
}

func NewMeiliIndex(host string, apiKey string, uid string, logger *slog.Logger) *MeiliIndex {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(uid) == "" {
		uid = DefaultIndexUID
	}
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	return &MeiliIndex{
		client: client,
		uid:    uid,
		index:  client.Index(uid),
		logger: logger,
	}
}

// Configure declares the filterable and sortable attributes of the index.
func (m *MeiliIndex) Configure() error {
	if m.client == nil {
		return nil
	}
	index := m.client.Index(m.uid)
	if _, err := index.UpdateFilterableAttributes(&[]string{"brand", "model", "vehicle_type", "year", "price", "fuel_type"}); err != nil {
		return err
	}
	_, err := index.UpdateSortableAttributes(&[]string{"price", "year", "mileage", "created_at"})
	return err
}

func (m *MeiliIndex) SyncListing(ctx context.Context, listing entities.Listing) error {
	if !listing.IsPublic() {
		return m.RemoveListing(ctx, listing.ListingID)
	}
	task, err := m.index.AddDocuments([]ListingDocument{toDocument(listing)}, "id")
	if err != nil {
		return err
	}
	m.logger.Debug("listing indexed",
		"event", "listing_search_indexed",
		"module", "marketplace/listing-service",
		"layer", "adapter",
		"listing_id", listing.ListingID,
		"task_uid", task.TaskUID,
	)
	return nil
}

func (m *MeiliIndex) RemoveListing(_ context.Context, listingID string) error {
	_, err := m.index.DeleteDocument(strings.TrimSpace(listingID))
	return err
}

func toDocument(listing entities.Listing) ListingDocument {
	return ListingDocument{
		ID:           listing.ListingID,
		Title:        listing.Title,
		Brand:        listing.Brand,
		Model:        listing.Model,
		VehicleType:  string(listing.VehicleType),
		Price:        listing.Price,
		Year:         listing.Year,
		Mileage:      listing.Mileage,
		FuelType:     listing.FuelType,
		Transmission: listing.Transmission,
		EngineSizeCC: listing.EngineSizeCC,
		Location:     listing.Location,
		CreatedAt:    listing.CreatedAt.Unix(),
	}
}
