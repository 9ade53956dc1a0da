package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/config"
	"github.com/jafarshop/larek/internal/larekapi"
	"github.com/jafarshop/larek/internal/view"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-product/main.go <id-or-title>")
		fmt.Println("Example: go run cmd/find-product/main.go \"антистресс\"")
		os.Exit(1)
	}

	query := strings.ToLower(os.Args[1])

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := larekapi.NewClient(cfg.API, logger)

	fmt.Printf("🔍 Searching for: %s\n\n", os.Args[1])

	products, err := client.GetProductList(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch catalog: %v\n", err)
		os.Exit(1)
	}

	found := 0
	for _, p := range products {
		if p.ID != os.Args[1] && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		found++
		fmt.Printf("✅ %s\n", p.Title)
		fmt.Printf("ID: %s\n", p.ID)
		fmt.Printf("Category: %s\n", p.Category)
		fmt.Printf("Price: %s\n", view.PriceText(p.Price))
		fmt.Printf("Image: %s\n\n", p.Image)
	}

	if found == 0 {
		fmt.Printf("❌ Nothing matches '%s' among %d products.\n", os.Args[1], len(products))
		os.Exit(1)
	}
}
