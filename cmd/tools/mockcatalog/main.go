package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
)

// mockcatalog serves a small fixed catalog with the same contract as the real
// product API, for local development without network access.
func main() {
	addr := flag.String("addr", ":9090", "Listen address")
	apiKey := flag.String("api-key", os.Getenv("CATALOG_API_KEY"), "Required x-api-key value (empty disables the check)")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, *apiKey) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		out := filter(fixtures, q.Get("search"))
		if off, err := strconv.Atoi(q.Get("offset")); err == nil && off > 0 {
			if off > len(out) {
				off = len(out)
			}
			out = out[off:]
		}
		if lim, err := strconv.Atoi(q.Get("limit")); err == nil && lim > 0 && lim < len(out) {
			out = out[:lim]
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, *apiKey) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id := r.PathValue("id")
		for _, p := range fixtures {
			if p.ID == id {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
	})

	fmt.Printf("Mock catalog listening on %s (%d products)\n", *addr, len(fixtures))
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func authorized(r *http.Request, key string) bool {
	return key == "" || r.Header.Get("x-api-key") == key
}

func filter(items []products.Product, search string) []products.Product {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	out := make([]products.Product, 0, len(items))
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.Name), search) || strings.Contains(strings.ToLower(p.Brand), search) {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

var fixtures = []products.Product{
	{
		ID:        "APL-IP15",
		Name:      "iPhone 15",
		Brand:     "Apple",
		BasePrice: decimal.NewFromInt(999),
		ImageURL:  "https://example.com/img/iphone15.webp",
		Specs: &products.Specs{
			Screen:    "6.1\" Super Retina XDR",
			Processor: "A16 Bionic",
			OS:        "iOS 17",
		},
		StorageOptions: []products.StorageOption{
			{Capacity: "128 GB", Price: decimal.NewFromInt(999)},
			{Capacity: "256 GB", Price: decimal.NewFromInt(1099)},
		},
		ColorOptions: []products.ColorOption{
			{Name: "Black", HexCode: "#1f2020", ImageURL: "https://example.com/img/iphone15-black.webp"},
			{Name: "Pink", HexCode: "#fadde1", ImageURL: "https://example.com/img/iphone15-pink.webp"},
		},
		SimilarProducts: []products.SimilarProduct{
			{ID: "SMG-S24", Brand: "Samsung", Name: "Galaxy S24", BasePrice: decimal.NewFromInt(899), ImageURL: "https://example.com/img/s24.webp"},
		},
	},
	{
		ID:        "SMG-S24",
		Name:      "Galaxy S24",
		Brand:     "Samsung",
		BasePrice: decimal.NewFromInt(899),
		ImageURL:  "https://example.com/img/s24.webp",
		StorageOptions: []products.StorageOption{
			{Capacity: "256 GB", Price: decimal.NewFromInt(899)},
			{Capacity: "512 GB", Price: decimal.NewFromInt(1019)},
		},
		ColorOptions: []products.ColorOption{
			{Name: "Onyx Black", HexCode: "#000000", ImageURL: "https://example.com/img/s24-black.webp"},
		},
	},
	{
		ID:        "GGL-P8",
		Name:      "Pixel 8",
		Brand:     "Google",
		BasePrice: decimal.NewFromInt(799),
		ImageURL:  "https://example.com/img/pixel8.webp",
	},
}
