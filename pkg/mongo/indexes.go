package mongo

import (
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const (
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Products Collection Indexes
	// Index 1: catalog id, the key used by carts and wishlists
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_product_id_unique"),
		},
	},
	// Index 2: Single-field index on category for filtering
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		},
	},
	// Index 3: Compound index on brand and price for faceted listings
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "brand", Value: 1},
				{Key: "price", Value: 1},
			},
			Options: options.Index().SetName("idx_brand_price"),
		},
	},
	// Index 4: Text index for full-text search on products
	{
		CollectionName: ProductsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "brand", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().
				SetName("idx_product_text_search").
				SetWeights(bson.D{
					{Key: "name", Value: 10},
					{Key: "brand", Value: 5},
					{Key: "tags", Value: 5},
					{Key: "description", Value: 1},
				}),
		},
	},

	// Categories Collection Indexes
	{
		CollectionName: CategoriesCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_category_id_unique"),
		},
	},
}

func EnsureIndexes(db *mongo.Database, log *slog.Logger) error {
	log.Info("starting index creation")

	for _, idxConfig := range requiredIndexes {
		collection := db.Collection(idxConfig.CollectionName)
		ctx, cancel := global.GetDefaultTimer()

		// Create the index
		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		cancel()
		if err != nil {
			return fmt.Errorf("error creating index on collection %s: %w", idxConfig.CollectionName, err)
		}

		log.Info("created index", "index", indexName, "collection", idxConfig.CollectionName)
	}

	log.Info("all indexes created successfully")
	return nil
}
