package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/didip/tollbooth/v7"
	"github.com/rs/cors"

	"mallscout/pkg/aggregate"
	"mallscout/pkg/api"
	"mallscout/pkg/cache"
	"mallscout/pkg/config"
	"mallscout/pkg/models"
	"mallscout/pkg/pricing"
	"mallscout/pkg/rules"
	"mallscout/pkg/scrapers"
	"mallscout/pkg/scrapers/coupang"
	"mallscout/pkg/scrapers/elevenst"
	"mallscout/pkg/scrapers/naver"
)

// Detail lookups drive a real browser; bound how many run at once.
var scraperSemaphore = make(chan struct{}, 3)

type app struct {
	aggregator *aggregate.Aggregator
	registry   *scrapers.Registry
	catalog    *rules.Catalog
}

func main() {
	cfg := config.Load()

	store, err := cache.New(cfg.CacheDBPath, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer store.Close()
	log.Printf("Cache initialized at %s with TTL %s", cfg.CacheDBPath, cfg.CacheTTL)

	if cfg.Production {
		log.Println("Running in production mode: fallback data disabled")
	}

	registry := scrapers.NewRegistry(
		coupang.NewScraper(cfg.Production),
		naver.NewScraper(cfg.NaverClientID, cfg.NaverClientSecret, cfg.Production),
		elevenst.NewScraper(cfg.Production),
	)

	a := &app{
		aggregator: aggregate.New(registry, store),
		registry:   registry,
		catalog:    rules.Default(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	handler := c.Handler(a.routes())

	if ip := outboundIP(); ip != nil {
		fmt.Printf("Local Network URL: http://%s:%s\n", ip.String(), cfg.Port)
	}
	fmt.Printf("Access URL: http://localhost:%s\n", cfg.Port)
	fmt.Printf("API Docs: http://localhost:%s/\n", cfg.Port)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	// Searches fan out to every mall; keep frontend polling in check.
	searchLimiter := tollbooth.NewLimiter(1, nil)
	mux.Handle("POST /api/products/search", tollbooth.LimitFuncHandler(searchLimiter, a.handleSearch))

	mux.HandleFunc("POST /api/calculate", a.handleCalculate)
	mux.HandleFunc("GET /api/lookup", a.handleLookup)
	mux.HandleFunc("GET /api/rules", a.handleRules)
	mux.HandleFunc("GET /", a.handleDocs)

	return mux
}

func (a *app) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body. Expected {\"query\": \"...\"}", r.URL.Path)
		return
	}
	defer r.Body.Close()

	result, err := a.aggregator.SearchAll(req.Query)
	if err != nil {
		if errors.Is(err, models.ErrInvalidKeyword) {
			api.WriteBadRequest(w, "Keyword must be at least 2 characters", r.URL.Path)
			return
		}
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	api.WriteJSON(w, http.StatusOK, result)
}

type quoteInput struct {
	BasePrice   int `json:"basePrice"`
	ShippingFee int `json:"shippingFee"`
}

type calculateResponse struct {
	Results      []models.CalculatedPrice `json:"results"`
	CheapestMall models.MallID            `json:"cheapestMall"`
}

func (a *app) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BasePrices      map[models.MallID]quoteInput `json:"basePrices"`
		SelectedRuleIDs map[models.MallID][]string   `json:"selectedRuleIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body.", r.URL.Path)
		return
	}
	defer r.Body.Close()

	if len(req.BasePrices) == 0 {
		api.WriteBadRequest(w, "basePrices must contain at least one mall", r.URL.Path)
		return
	}

	// The engine itself is total; this guards the handler against faults
	// that would otherwise escape as a blank 500.
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Calculation panic: %v", rec)
			api.WriteInternalServerError(w, fmt.Errorf("calculation failed"), r.URL.Path)
		}
	}()

	quotes := make(map[models.MallID]models.PriceQuote, len(req.BasePrices))
	for mall, q := range req.BasePrices {
		quotes[mall] = models.PriceQuote{
			Mall:        mall,
			BasePrice:   q.BasePrice,
			ShippingFee: q.ShippingFee,
			FetchedAt:   time.Now(),
		}
	}

	results, cheapest := pricing.ComputeAll(quotes, req.SelectedRuleIDs, a.catalog)
	api.WriteJSON(w, http.StatusOK, calculateResponse{Results: results, CheapestMall: cheapest})
}

func (a *app) handleLookup(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		api.WriteBadRequest(w, "Missing url query parameter", r.URL.Path)
		return
	}

	scraper := a.registry.ForURL(rawURL)
	if scraper == nil {
		api.WriteBadRequest(w, "URL does not belong to a supported mall. Available: coupang, naver, elevenst", r.URL.Path)
		return
	}

	scraperSemaphore <- struct{}{}
	defer func() { <-scraperSemaphore }()

	detail, err := scraper.Scrape(rawURL)
	if err != nil {
		log.Printf("Error scraping %s %s: %v", scraper.Name(), rawURL, err)

		if errors.Is(err, models.ErrProductNotFound) {
			api.WriteNotFound(w, "Product not found", r.URL.Path)
			return
		}
		if strings.Contains(err.Error(), "context deadline exceeded") || strings.Contains(err.Error(), "timeout") {
			api.WriteGatewayTimeout(w, "Upstream mall timed out: "+err.Error(), r.URL.Path)
			return
		}
		api.WriteInternalServerError(w, err, r.URL.Path)
		return
	}

	api.WriteJSON(w, http.StatusOK, detail)
}

func (a *app) handleRules(w http.ResponseWriter, r *http.Request) {
	if mall := models.MallID(r.URL.Query().Get("mall")); mall != "" {
		if !models.IsValidMall(mall) {
			api.WriteBadRequest(w, "Mall not supported. Available: coupang, naver, elevenst", r.URL.Path)
			return
		}
		api.WriteJSON(w, http.StatusOK, a.catalog.RulesFor(mall))
		return
	}
	api.WriteJSON(w, http.StatusOK, a.catalog.All())
}

func (a *app) handleDocs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		api.WriteNotFound(w, "Unknown endpoint", r.URL.Path)
		return
	}

	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("Mallscout API"),
		),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func outboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP
}
