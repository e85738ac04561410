package coupang

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"

	"mallscout/pkg/extract"
	"mallscout/pkg/models"
	"mallscout/pkg/scrapers"
)

const (
	BaseURL   = "https://www.coupang.com"
	searchURL = BaseURL + "/np/search?q=%s"

	fallbackBasePrice = 25000
	fallbackImage     = "https://dummyimage.com/400x400/orange/white&text=Coupang"
)

// Search-page markup variants. Coupang runs layout experiments, so the
// older search-product list and the newer product-item grid coexist.
var (
	blockPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<li class="search-product(?:\s[^"]*)?".*?</li>`),
		regexp.MustCompile(`(?s)<li class="product-item(?:\s[^"]*)?".*?</li>`),
	}
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<div class="name">(.*?)</div>`),
		regexp.MustCompile(`data-product-name="([^"]+)"`),
		regexp.MustCompile(`(?s)<div class="product-name">(.*?)</div>`),
	}
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<strong class="price-value">(.*?)</strong>`),
		regexp.MustCompile(`(?s)<span class="sale-price">(.*?)</span>`),
		regexp.MustCompile(`data-product-price="([^"]+)"`),
	}
	origPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<del class="base-price">(.*?)</del>`),
		regexp.MustCompile(`(?s)<span class="original-price">(.*?)</span>`),
	}
	imagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<img[^>]+src="([^"]+)"`),
		regexp.MustCompile(`<img[^>]+data-src="([^"]+)"`),
	}
	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<a[^>]+href="(/vp/products/[^"]+)"`),
		regexp.MustCompile(`<a[^>]+href="(https://www\.coupang\.com/vp/products/[^"]+)"`),
	}
	ratingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<em class="rating">(.*?)</em>`),
	}
	reviewPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<span class="rating-total-count">(.*?)</span>`),
	}
	rocketPattern = regexp.MustCompile(`badge rocket|rocket_logo|로켓배송`)
)

type Scraper struct {
	Collector  *colly.Collector
	SearchURL  string
	Production bool
}

func NewScraper(production bool) *Scraper {
	c := colly.NewCollector(
		colly.AllowedDomains("www.coupang.com", "127.0.0.1"), // localhost for testing
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
	return models.MallCoupang
}

func (s *Scraper) OwnsURL(url string) bool {
	return scrapers.OwnsDomain(url, "coupang.com")
}

// Search never fails the caller: transport errors, block pages and markup
// drift all collapse into the empty case, which substitutes fallback data
// outside production.
func (s *Scraper) Search(keyword string) []models.Listing {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[COUPANG] search panic recovered: %v", r)
		}
	}()

	listings := s.liveSearch(keyword)
	if len(listings) == 0 && !s.Production {
		return scrapers.Fallback(models.MallCoupang, keyword, fallbackBasePrice, BaseURL, fallbackImage)
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
	log.Printf("[COUPANG] searching %s", target)
	if err := c.Visit(target); err != nil {
		log.Printf("[COUPANG] search fetch failed: %v", err)
		return nil
	}

	return ParseSearch(body)
}

// ParseSearch segments a search page into product blocks and extracts one
// listing per block. Blocks missing a name or price are dropped.
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
			ProductName: name,
			Price:       price,
			ImageURL:    extract.AbsoluteURL(extract.First(block, imagePatterns), BaseURL),
			ProductURL:  extract.AbsoluteURL(extract.First(block, urlPatterns), BaseURL),
			Mall:        models.MallCoupang,
		}

		if orig, ok := extract.Price(block, origPricePatterns); ok && orig > price {
			l.OriginalPrice = orig
		}
		if rating, ok := extract.Float(block, ratingPatterns); ok {
			l.Rating = rating
		}
		if count, ok := extract.Price(block, reviewPatterns); ok {
			l.ReviewCount = count
		}
		l.IsRocketDelivery = rocketPattern.MatchString(block)

		listings = append(listings, l)
	}
	return listings
}

// Scrape fetches one product detail page. Coupang's product pages sit
// behind heavier bot protection than search, so this goes through a real
// browser the same way the search page cannot require.
func (s *Scraper) Scrape(productURL string) (*models.ProductDetail, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(scrapers.UserAgent()),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	scrapeCtx, cancelScrape := context.WithTimeout(ctx, 45*time.Second)
	defer cancelScrape()

	var name, priceStr, imageURL, shippingStr string

	log.Printf("[COUPANG] navigating to %s", productURL)
	err := chromedp.Run(scrapeCtx,
		chromedp.Navigate(productURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelector("h1.prod-buy-header__title")?.innerText || document.querySelector("meta[property='og:title']")?.content || ""`, &name),
		chromedp.Evaluate(`document.querySelector("span.total-price > strong")?.innerText || document.querySelector(".prod-sale-price .total-price")?.innerText || ""`, &priceStr),
		chromedp.Evaluate(`document.querySelector("meta[property='og:image']")?.content || ""`, &imageURL),
		chromedp.Evaluate(`document.querySelector(".prod-shipping-fee-message")?.innerText || ""`, &shippingStr),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}

	name = strings.TrimSpace(strings.ReplaceAll(name, "\n", " "))
	if name == "" {
		return nil, models.ErrProductNotFound
	}

	detail := &models.ProductDetail{
		Mall:       models.MallCoupang,
		Name:       name,
		ImageURL:   extract.AbsoluteURL(imageURL, BaseURL),
		ProductURL: productURL,
		ScrapedAt:  time.Now(),
	}
	if price, ok := extract.ParsePrice(priceStr); ok {
		detail.BasePrice = price
	}
	if fee, ok := extract.ParsePrice(shippingStr); ok && !strings.Contains(shippingStr, "무료") {
		detail.ShippingFee = fee
	}

	return detail, nil
}
