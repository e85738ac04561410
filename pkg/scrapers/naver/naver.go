// Package naver searches through the Naver Shopping Open API instead of
// scraping search pages. The API needs client credentials; without them the
// adapter never calls out and serves fallback data outside production.
package naver

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"mallscout/pkg/extract"
	"mallscout/pkg/models"
	"mallscout/pkg/scrapers"
)

const (
	BaseURL      = "https://shopping.naver.com"
	shopAPIURL   = "https://openapi.naver.com/v1/search/shop.json"
	fallbackBase = 24500

	fallbackImage = "https://dummyimage.com/400x400/green/white&text=Naver"
)

type searchResponse struct {
	Total int          `json:"total"`
	Items []searchItem `json:"items"`
}

// searchItem is one API result. Prices arrive as digit strings and the
// title carries <b> highlighting around matched query terms.
type searchItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Image    string `json:"image"`
	Lprice   string `json:"lprice"`
	Hprice   string `json:"hprice"`
	MallName string `json:"mallName"`
}

// Smartstore product pages inline their state as one big JSON blob.
var (
	detailNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"dispName"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`"productName"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`<meta property="og:title" content="([^"]+)"`),
	}
	detailPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"discountedSalePrice"\s*:\s*([0-9]+)`),
		regexp.MustCompile(`"salePrice"\s*:\s*([0-9]+)`),
	}
	detailImagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta property="og:image" content="([^"]+)"`),
	}
	detailShippingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"baseFee"\s*:\s*([0-9]+)`),
		regexp.MustCompile(`"deliveryFee"\s*:\s*([0-9]+)`),
	}
)

type Scraper struct {
	client       *resty.Client
	clientID     string
	clientSecret string

	APIURL     string
	Production bool
}

func NewScraper(clientID, clientSecret string, production bool) *Scraper {
	client := resty.New()
	client.SetTimeout(5 * time.Second)
	client.SetHeader("User-Agent", scrapers.UserAgent())

	return &Scraper{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		APIURL:       shopAPIURL,
		Production:   production,
	}
}

func (s *Scraper) Name() models.MallID {
	return models.MallNaver
}

func (s *Scraper) OwnsURL(url string) bool {
	return scrapers.OwnsDomain(url, "smartstore.naver.com", "brand.naver.com", "shopping.naver.com")
}

func (s *Scraper) Search(keyword string) []models.Listing {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[NAVER] search panic recovered: %v", r)
		}
	}()

	listings := s.liveSearch(keyword)
	if len(listings) == 0 && !s.Production {
		return scrapers.Fallback(models.MallNaver, keyword, fallbackBase, BaseURL, fallbackImage)
	}
	return listings
}

func (s *Scraper) liveSearch(keyword string) []models.Listing {
	if s.clientID == "" || s.clientSecret == "" {
		log.Println("[NAVER] no API credentials configured, skipping live search")
		return nil
	}

	resp, err := s.client.R().
		SetHeader("X-Naver-Client-Id", s.clientID).
		SetHeader("X-Naver-Client-Secret", s.clientSecret).
		SetQueryParams(map[string]string{
			"query":   keyword,
			"display": strconv.Itoa(scrapers.SearchLimit),
			"sort":    "sim",
		}).
		Get(s.APIURL)
	if err != nil {
		log.Printf("[NAVER] search request failed: %v", err)
		return nil
	}
	if !resp.IsSuccess() {
		log.Printf("[NAVER] search returned status %d", resp.StatusCode())
		return nil
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		log.Printf("[NAVER] failed to decode search response: %v", err)
		return nil
	}

	return normalize(result.Items)
}

func normalize(items []searchItem) []models.Listing {
	listings := make([]models.Listing, 0, len(items))
	for _, item := range items {
		if len(listings) == scrapers.SearchLimit {
			break
		}

		name := extract.StripTags(item.Title)
		price, ok := extract.ParsePrice(item.Lprice)
		if name == "" || !ok {
			continue
		}

		l := models.Listing{
			ProductName: name,
			Price:       price,
			ImageURL:    item.Image,
			ProductURL:  item.Link,
			Mall:        models.MallNaver,
		}
		if orig, ok := extract.ParsePrice(item.Hprice); ok && orig > price {
			l.OriginalPrice = orig
		}

		listings = append(listings, l)
	}
	return listings
}

// Scrape pulls one smartstore product page and extracts the inlined state.
func (s *Scraper) Scrape(productURL string) (*models.ProductDetail, error) {
	log.Printf("[NAVER] navigating to %s", productURL)

	resp, err := s.client.R().Get(productURL)
	if err != nil {
		return nil, fmt.Errorf("detail fetch failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("detail fetch returned status %d", resp.StatusCode())
	}

	body := string(resp.Body())
	name := extract.Text(body, detailNamePatterns)
	if name == "" {
		return nil, models.ErrProductNotFound
	}

	detail := &models.ProductDetail{
		Mall:       models.MallNaver,
		Name:       name,
		ImageURL:   extract.First(body, detailImagePatterns),
		ProductURL: productURL,
		ScrapedAt:  time.Now(),
	}
	if price, ok := extract.Price(body, detailPricePatterns); ok {
		detail.BasePrice = price
	}
	if fee, ok := extract.Price(body, detailShippingPatterns); ok {
		detail.ShippingFee = fee
	}

	return detail, nil
}
