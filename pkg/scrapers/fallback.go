package scrapers

import (
	"fmt"

	"mallscout/pkg/logger"
	"mallscout/pkg/models"
)

const fallbackCount = 3

// Fallback builds the deterministic synthetic listings substituted when a
// live search yields nothing and the deployment allows it. Names carry the
// [샘플] marker so they are never mistaken for live data; prices are fixed
// per-mall constants with a small spread.
func Fallback(mall models.MallID, keyword string, basePrice int, productURL, imageURL string) []models.Listing {
	logger.Dedup("[%s] no live results for %q, substituting fallback data", mall, keyword)

	listings := make([]models.Listing, 0, fallbackCount)
	for i := 0; i < fallbackCount; i++ {
		listings = append(listings, models.Listing{
			ProductName: fmt.Sprintf("[샘플] %s 인기상품 %d", keyword, i+1),
			Price:       basePrice + i*1000,
			ImageURL:    imageURL,
			ProductURL:  productURL,
			Mall:        mall,
		})
	}
	return listings
}
