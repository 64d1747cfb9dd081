package mongo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// productDoc is the stored form of a product. Prices are kept as Decimal128.
type productDoc struct {
	models.Product `bson:",inline"`
	Price          bson.Decimal128  `bson:"price"`
	OriginalPrice  *bson.Decimal128 `bson:"original_price,omitempty"`
}

func toDoc(p models.Product) (productDoc, error) {
	price, err := bson.ParseDecimal128(p.Price.String())
	if err != nil {
		return productDoc{}, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	doc := productDoc{Product: p, Price: price}

	if p.OriginalPrice != nil {
		original, err := bson.ParseDecimal128(p.OriginalPrice.String())
		if err != nil {
			return productDoc{}, fmt.Errorf("product %d original price: %w", p.ID, err)
		}
		doc.OriginalPrice = &original
	}
	return doc, nil
}

func fromDoc(doc productDoc) (models.Product, error) {
	p := doc.Product

	price, err := decimal.NewFromString(doc.Price.String())
	if err != nil {
		return models.Product{}, fmt.Errorf("product %d price: %w", p.ID, err)
	}
	p.Price = price

	if doc.OriginalPrice != nil {
		original, err := decimal.NewFromString(doc.OriginalPrice.String())
		if err != nil {
			return models.Product{}, fmt.Errorf("product %d original price: %w", p.ID, err)
		}
		p.OriginalPrice = &original
	}
	return p, nil
}

// CatalogSource loads the catalog from the products and categories collections
type CatalogSource struct {
	DB *mongo.Database
}

func (s CatalogSource) Load(ctx context.Context) ([]models.Product, []models.Category, error) {
	byID := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})

	cursor, err := s.DB.Collection(ProductsCollection).Find(ctx, bson.D{}, byID)
	if err != nil {
		return nil, nil, err
	}
	var docs []productDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, nil, err
	}

	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		p, err := fromDoc(doc)
		if err != nil {
			return nil, nil, err
		}
		products = append(products, p)
	}

	cursor, err = s.DB.Collection(CategoriesCollection).Find(ctx, bson.D{}, byID)
	if err != nil {
		return nil, nil, err
	}
	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, nil, err
	}

	return products, categories, nil
}

// SeedCatalog upserts every product and category by id, at most concurrency
// writes at a time
func SeedCatalog(ctx context.Context, db *mongo.Database, products []models.Product, categories []models.Category, concurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	upsert := options.Replace().SetUpsert(true)
	productsColl := db.Collection(ProductsCollection)
	categoriesColl := db.Collection(CategoriesCollection)

	for _, p := range products {
		g.Go(func() error {
			doc, err := toDoc(p)
			if err != nil {
				return err
			}
			if _, err := productsColl.ReplaceOne(ctx, bson.D{{Key: "id", Value: p.ID}}, doc, upsert); err != nil {
				return fmt.Errorf("failed to upsert product %d: %w", p.ID, err)
			}
			return nil
		})
	}

	for _, c := range categories {
		g.Go(func() error {
			if _, err := categoriesColl.ReplaceOne(ctx, bson.D{{Key: "id", Value: c.ID}}, c, upsert); err != nil {
				return fmt.Errorf("failed to upsert category %d: %w", c.ID, err)
			}
			return nil
		})
	}

	return g.Wait()
}
