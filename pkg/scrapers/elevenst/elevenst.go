package elevenst

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"time"

	"github.com/gocolly/colly/v2"

	"mallscout/pkg/extract"
	"mallscout/pkg/models"
	"mallscout/pkg/scrapers"
)

const (
	BaseURL   = "https://www.11st.co.kr"
	searchURL = "https://search.11st.co.kr/Search.tmall?kwd=%s"

	fallbackBasePrice = 26000
	fallbackImage     = "https://dummyimage.com/400x400/red/white&text=11st"
)

var (
	blockPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<li class="c-card-item(?:\s[^"]*)?".*?</li>`),
		regexp.MustCompile(`(?s)<div class="box_pd(?:\s[^"]*)?".*?</div>\s*</div>`),
	}
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<strong class="c-card-item__name">(.*?)</strong>`),
		regexp.MustCompile(`(?s)<p class="info_tit">(.*?)</p>`),
		regexp.MustCompile(`<a[^>]+title="([^"]+)"`),
	}
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<span class="c-card-item__price"[^>]*>\s*<strong>(.*?)</strong>`),
		regexp.MustCompile(`(?s)<span class="sale_price">(.*?)</span>`),
	}
	origPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<span class="c-card-item__price-del"[^>]*>(.*?)</span>`),
		regexp.MustCompile(`(?s)<span class="normal_price">(.*?)</span>`),
	}
	imagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<img[^>]+src="([^"]+)"`),
		regexp.MustCompile(`<img[^>]+data-src="([^"]+)"`),
	}
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<a[^>]+href="(https?://[^"]*11st\.co\.kr[^"]*/products/[^"]+)"`),
		regexp.MustCompile(`<a[^>]+href="(/products/[^"]+)"`),
	}
	reviewPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<span class="c-card-item__review-count">(.*?)</span>`),
		regexp.MustCompile(`리뷰\s*([0-9,]+)`),
	}
	freeShippingPattern = regexp.MustCompile(`무료배송|c-flag__item--delivery`)

	detailNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`),
		regexp.MustCompile(`(?s)<h1 class="title">(.*?)</h1>`),
	}
	detailPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`"price"\s*:\s*"?([0-9]+)"?`),
		regexp.MustCompile(`(?s)<dd class="price">(.*?)</dd>`),
	}
	detailImagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta property="og:image" content="([^"]+)"`),
	}
	detailShippingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"deliveryPrice"\s*:\s*"?([0-9]+)"?`),
	}
)

type Scraper struct {
	Collector  *colly.Collector
	SearchURL  string
	Production bool
}

func NewScraper(production bool) *Scraper {
	c := colly.NewCollector(
		colly.AllowedDomains("search.11st.co.kr", "www.11st.co.kr", "127.0.0.1"), // localhost for testing
		colly.UserAgent(scrapers.UserAgent()),
	)
	c.SetRequestTimeout(8 * time.Second)
	return &Scraper{
		Collector:  c,
		SearchURL:  searchURL,
		Production: production,
	}
}

func (s *Scraper) Name() models.MallID {
	return models.MallElevenst
}

func (s *Scraper) OwnsURL(url string) bool {
	return scrapers.OwnsDomain(url, "11st.co.kr")
}

func (s *Scraper) Search(keyword string) []models.Listing {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[11ST] search panic recovered: %v", r)
		}
	}()

	listings := s.liveSearch(keyword)
	if len(listings) == 0 && !s.Production {
		return scrapers.Fallback(models.MallElevenst, keyword, fallbackBasePrice, BaseURL, fallbackImage)
	}
	return listings
}

func (s *Scraper) liveSearch(keyword string) []models.Listing {
	var body string

	c := s.Collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	target := fmt.Sprintf(s.SearchURL, url.QueryEscape(keyword))
	log.Printf("[11ST] searching %s", target)
	if err := c.Visit(target); err != nil {
		log.Printf("[11ST] search fetch failed: %v", err)
		return nil
	}

	return ParseSearch(body)
}

func ParseSearch(body string) []models.Listing {
	blocks := extract.Blocks(body, blockPatterns, scrapers.SearchLimit)

	listings := make([]models.Listing, 0, len(blocks))
	for _, block := range blocks {
		name := extract.Text(block, namePatterns)
		price, ok := extract.Price(block, pricePatterns)
		if name == "" || !ok {
			continue
		}

		l := models.Listing{
			ProductName:    name,
			Price:          price,
			ImageURL:       extract.AbsoluteURL(extract.First(block, imagePatterns), BaseURL),
			ProductURL:     extract.AbsoluteURL(extract.First(block, urlPatterns), BaseURL),
			Mall:           models.MallElevenst,
			IsFreeShipping: freeShippingPattern.MatchString(block),
		}

		if orig, ok := extract.Price(block, origPricePatterns); ok && orig > price {
			l.OriginalPrice = orig
		}
		if count, ok := extract.Price(block, reviewPatterns); ok {
			l.ReviewCount = count
		}

		listings = append(listings, l)
	}
	return listings
}

// Scrape reads one product page. 11st product pages embed their state as
// script JSON, so the detail fields come from pattern extraction over the
// raw body rather than the DOM.
func (s *Scraper) Scrape(productURL string) (*models.ProductDetail, error) {
	var body string

	c := s.Collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})

	log.Printf("[11ST] navigating to %s", productURL)
	if err := c.Visit(productURL); err != nil {
		return nil, fmt.Errorf("detail fetch failed: %w", err)
	}

	name := extract.Text(body, detailNamePatterns)
	if name == "" {
		return nil, models.ErrProductNotFound
	}

	detail := &models.ProductDetail{
		Mall:       models.MallElevenst,
		Name:       name,
		ImageURL:   extract.AbsoluteURL(extract.First(body, detailImagePatterns), BaseURL),
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
