package coupang

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const searchPage = `
<!DOCTYPE html>
<html>
<body>
<ul id="productList">
    <li class="search-product">
        <a href="/vp/products/1001">
            <img src="//thumbnail1.coupangcdn.com/item1.jpg">
            <div class="name">제주 삼다수 2L 12병</div>
            <strong class="price-value">12,980</strong>
            <del class="base-price">15,000</del>
            <span class="badge rocket"></span>
            <em class="rating">4.5</em>
            <span class="rating-total-count">(1,234)</span>
        </a>
    </li>
    <li class="search-product">
        <a href="/vp/products/1002">
            <img src="//thumbnail2.coupangcdn.com/item2.jpg">
            <div class="name">삼다수 무라벨 2L 6병</div>
            <strong class="price-value">6,480</strong>
        </a>
    </li>
    <li class="search-product">
        <a href="/vp/products/1003">
            <div class="name">품절 상품</div>
            <strong class="price-value">품절</strong>
        </a>
    </li>
</ul>
</body>
</html>
`

func newTestScraper(t *testing.T, handler http.HandlerFunc) *Scraper {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	scraper := NewScraper(false)
	scraper.SearchURL = ts.URL + "/np/search?q=%s"
	scraper.Collector.AllowedDomains = nil
	return scraper
}

func TestScraper_Search(t *testing.T) {
	scraper := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPage)
	})

	listings := scraper.Search("삼다수")

	// Third block has no parseable price and must be dropped.
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.ProductName != "제주 삼다수 2L 12병" {
		t.Errorf("name = %q", first.ProductName)
	}
	if first.Price != 12980 {
		t.Errorf("price = %d, want 12980", first.Price)
	}
	if first.OriginalPrice != 15000 {
		t.Errorf("originalPrice = %d, want 15000", first.OriginalPrice)
	}
	if first.ImageURL != "https://thumbnail1.coupangcdn.com/item1.jpg" {
		t.Errorf("imageUrl = %q, protocol-relative source not normalized", first.ImageURL)
	}
	if first.ProductURL != "https://www.coupang.com/vp/products/1001" {
		t.Errorf("productUrl = %q", first.ProductURL)
	}
	if !first.IsRocketDelivery {
		t.Error("expected rocket delivery flag")
	}
	if first.Rating != 4.5 {
		t.Errorf("rating = %v, want 4.5", first.Rating)
	}
	if first.ReviewCount != 1234 {
		t.Errorf("reviewCount = %d, want 1234", first.ReviewCount)
	}

	second := listings[1]
	if second.OriginalPrice != 0 {
		t.Errorf("originalPrice should be absent without a strike price, got %d", second.OriginalPrice)
	}
	if second.IsRocketDelivery {
		t.Error("second listing should not carry the rocket flag")
	}
}

func TestScraper_Search_CapsCandidates(t *testing.T) {
	var page strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&page, `<li class="search-product"><div class="name">상품 %d</div><strong class="price-value">%d</strong></li>`, i, 1000+i)
	}
	scraper := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page.String())
	})

	listings := scraper.Search("상품")
	if len(listings) != 5 {
		t.Errorf("expected candidate cap of 5, got %d", len(listings))
	}
}

func TestScraper_Search_FallbackOnUpstreamFailure(t *testing.T) {
	scraper := newTestScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	listings := scraper.Search("노트북")
	if len(listings) != 3 {
		t.Fatalf("expected 3 fallback listings, got %d", len(listings))
	}
	for _, l := range listings {
		if !strings.HasPrefix(l.ProductName, "[샘플]") {
			t.Errorf("fallback listing not marked: %q", l.ProductName)
		}
		if !strings.Contains(l.ProductName, "노트북") {
			t.Errorf("fallback listing should embed the keyword: %q", l.ProductName)
		}
	}
	if listings[0].Price != 25000 {
		t.Errorf("fallback base price = %d, want 25000", listings[0].Price)
	}
}

func TestScraper_Search_ProductionReturnsEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	scraper := NewScraper(true)
	scraper.SearchURL = ts.URL + "/np/search?q=%s"
	scraper.Collector.AllowedDomains = nil

	if listings := scraper.Search("노트북"); len(listings) != 0 {
		t.Errorf("production mode must not substitute fallback data, got %d listings", len(listings))
	}
}

func TestScraper_OwnsURL(t *testing.T) {
	scraper := NewScraper(false)
	if !scraper.OwnsURL("https://www.coupang.com/vp/products/123") {
		t.Error("should own coupang product URLs")
	}
	if scraper.OwnsURL("https://www.11st.co.kr/products/123") {
		t.Error("should not own 11st URLs")
	}
}
