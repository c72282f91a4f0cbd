package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"tea-kart/internal/catalog"
	"tea-kart/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sampleTea struct {
	title       string
	price       string
	description string
	content     string
	imageURL    string
	category    model.TeaCategory
	origin      string
}

var sampleTeas = []sampleTea{
	{
		title:       "Earl Grey Premium",
		price:       "450",
		description: "Classic Earl Grey with bergamot and cornflower petals",
		content:     "A timeless classic blend of Ceylon black tea scented with bergamot oil and adorned with beautiful cornflower petals. Perfect for afternoon tea service.",
		imageURL:    "https://images.unsplash.com/photo-1576092768241-dec231879fc3?w=400",
		category:    model.CategoryBlackTea,
		origin:      "Sri Lanka",
	},
	{
		title:       "Dragon Well Green Tea",
		price:       "380",
		description: "Delicate Chinese green tea with sweet, nutty flavor",
		content:     "Hand-picked Dragon Well (Longjing) green tea from the hills of Hangzhou. Known for its flat, sword-shaped leaves and refreshing taste.",
		imageURL:    "https://images.unsplash.com/photo-1627435601361-ec25f5b1d0e5?w=400",
		category:    model.CategoryGreenTea,
		origin:      "China",
	},
	{
		title:       "Himalayan Gold",
		price:       "650",
		description: "Premium high-altitude black tea from Nepal",
		content:     "Exceptional black tea grown at high altitudes in the Himalayas. Full-bodied with muscatel notes and golden liquor.",
		imageURL:    "https://images.unsplash.com/photo-1597318759977-caeb0c3a5b37?w=400",
		category:    model.CategoryBlackTea,
		origin:      "Nepal",
	},
	{
		title:       "Chamomile Dream",
		price:       "320",
		description: "Soothing herbal blend perfect for bedtime",
		content:     "Pure chamomile flowers combined with lavender and honey granules. Naturally caffeine-free and perfect for evening relaxation.",
		imageURL:    "https://images.unsplash.com/photo-1556881286-5a5d1e7a4d4e?w=400",
		category:    model.CategoryHerbalTea,
		origin:      "Egypt",
	},
	{
		title:       "Royal Oolong",
		price:       "520",
		description: "Traditional Taiwanese oolong with floral notes",
		content:     "Semi-fermented oolong tea from high-mountain gardens in Taiwan. Complex flavor profile with orchid-like aroma and smooth finish.",
		imageURL:    "https://images.unsplash.com/photo-1544787219-7f47ccb76574?w=400",
		category:    model.CategoryOolongTea,
		origin:      "Taiwan",
	},
	{
		title:       "Silver Needle White Tea",
		price:       "750",
		description: "Rare and delicate white tea with subtle sweetness",
		content:     "Premium white tea made from young silver buds. Light, subtle flavor with natural sweetness and minimal processing preserves antioxidants.",
		imageURL:    "https://images.unsplash.com/photo-1571934811356-5cc061b6821f?w=400",
		category:    model.CategoryWhiteTea,
		origin:      "China",
	},
	{
		title:       "Royal Breakfast Blend",
		price:       "420",
		description: "Robust morning blend of Assam and Ceylon teas",
		content:     "A hearty breakfast blend combining the best of Assam and Ceylon black teas. Strong, malty flavor that pairs perfectly with milk.",
		imageURL:    "https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=400",
		category:    model.CategorySpecialtyBlend,
		origin:      "India",
	},
	{
		title:       "Jasmine Phoenix Pearls",
		price:       "580",
		description: "Hand-rolled green tea scented with jasmine flowers",
		content:     "Green tea leaves hand-rolled into pearls and scented with fresh jasmine flowers. Aromatic and refreshing with floral undertones.",
		imageURL:    "https://images.unsplash.com/photo-1571934811356-5cc061b6821f?w=400",
		category:    model.CategoryGreenTea,
		origin:      "China",
	},
}

// gencatalog writes the gzipped catalogue snapshot served while the catalogue
// service is down. Product ids are derived from the titles so that carts
// restored against a regenerated snapshot still resolve.
func main() {
	out := flag.String("out", "data/catalog/products.json.gz", "snapshot file to write")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC()
	products := make([]model.Product, len(sampleTeas))
	for i, tea := range sampleTeas {
		products[i] = model.Product{
			ID:             uuid.NewSHA1(uuid.NameSpaceURL, []byte("tea-kart/"+tea.title)).String(),
			Title:          tea.title,
			Description:    tea.description,
			Content:        tea.content,
			Category:       tea.category,
			Price:          decimal.RequireFromString(tea.price),
			ImageURL:       tea.imageURL,
			WeightGrams:    100,
			OriginCountry:  tea.origin,
			InventoryCount: 100,
			IsAvailable:    true,
			CreatedAt:      now,
		}
	}

	file, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer file.Close()

	if err := catalog.WriteSnapshot(file, products); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}

	fmt.Printf("Created %s with %d products\n", *out, len(products))
}
