package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ProductsCollection is the MongoDB collection holding products.
const ProductsCollection = "products"

// productDocument is the BSON shape of a product.
type productDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	SellerID     string             `bson:"sellerId"`
	Name         string             `bson:"name"`
	Brand        string             `bson:"brand"`
	Price        float64            `bson:"price"`
	Quantity     int                `bson:"quantity"`
	Category     string             `bson:"category"`
	FreeShipping bool               `bson:"freeShipping"`
	Description  string             `bson:"description"`
	Image        string             `bson:"image,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// MongoStore implements ProductStore using MongoDB as the data store.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore creates a new instance of ProductStore on the products collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:     db.Client(),
		collection: db.Collection(ProductsCollection),
	}
}

// EnsureIndexes creates the index backing the seller listing.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sellerId", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("seller_listing"),
	})
	if err != nil {
		return fmt.Errorf("failed to create seller index: %w", err)
	}
	return nil
}

// Create inserts a new product document; MongoDB allocates the ObjectID.
func (m *MongoStore) Create(ctx context.Context, product Product) (*Product, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := toDocument(product)
	doc.ID = primitive.NilObjectID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	res, err := m.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = id
	return fromDocument(doc), nil
}

// FindOne retrieves a product by its key.
// Returns ErrProductNotFound if no product exists with the given key.
func (m *MongoStore) FindOne(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", perrors.ErrInvalidProductID, id)
	}
	var doc productDocument
	if err := m.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return fromDocument(doc), nil
}

// DeleteOne removes a product by its key.
// Returns ErrProductNotFound if nothing was deleted.
func (m *MongoStore) DeleteOne(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", perrors.ErrInvalidProductID, id)
	}
	res, err := m.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if res.DeletedCount == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// FindPage runs a $match/$sort/$skip/$limit aggregation.
func (m *MongoStore) FindPage(ctx context.Context, q query.PageQuery) ([]Product, error) {
	cursor, err := m.collection.Aggregate(ctx, pagePipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	products := make([]Product, len(docs))
	for i, doc := range docs {
		products[i] = *fromDocument(doc)
	}
	return products, nil
}

// Ping checks the connection to the primary.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// pagePipeline translates a page query into an aggregation pipeline.
func pagePipeline(q query.PageQuery) mongo.Pipeline {
	match := bson.D{}
	if q.Filter.SellerID != "" {
		match = append(match, bson.E{Key: "sellerId", Value: q.Filter.SellerID})
	}
	if q.Filter.Category != "" {
		match = append(match, bson.E{Key: "category", Value: q.Filter.Category})
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: q.Skip}},
		{{Key: "$limit", Value: q.Limit}},
	}
}

func toDocument(p Product) productDocument {
	return productDocument{
		SellerID:     p.SellerID,
		Name:         p.Name,
		Brand:        p.Brand,
		Price:        p.Price,
		Quantity:     p.Quantity,
		Category:     p.Category,
		FreeShipping: p.FreeShipping,
		Description:  p.Description,
		Image:        p.Image,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func fromDocument(doc productDocument) *Product {
	return &Product{
		ID:           doc.ID.Hex(),
		SellerID:     doc.SellerID,
		Name:         doc.Name,
		Brand:        doc.Brand,
		Price:        doc.Price,
		Quantity:     doc.Quantity,
		Category:     doc.Category,
		FreeShipping: doc.FreeShipping,
		Description:  doc.Description,
		Image:        doc.Image,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
}
