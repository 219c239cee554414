//nolint:mnd
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/entity"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

func main() {
	apiAddr := flag.String("addr", "http://localhost:8080", "Base URL of the resale service")
	userEmail := flag.String("email", "demo@example.com", "Identity email sent with each request")
	numItems := flag.Int("count", 10, "Number of items to create")
	soldRatio := flag.Float64("sold-ratio", 0.4, "Fraction of generated items marked as sold")
	interval := flag.Duration("interval", 500*time.Millisecond, "Interval between requests")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}

	log.Printf(
		"Generating %d items against '%s' every %v\n",
		*numItems,
		*apiAddr,
		*interval,
	)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	itemsSent := 0

	sendItem(ctx, client, *apiAddr, *userEmail, *soldRatio)

	itemsSent++
	if itemsSent >= *numItems {
		log.Printf("Created all %d items. Exiting.\n", *numItems)
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down producer...")
			return
		case <-ticker.C:
			sendItem(ctx, client, *apiAddr, *userEmail, *soldRatio)
			itemsSent++
			if itemsSent >= *numItems {
				log.Printf("Created all %d items. Exiting.\n", *numItems)
				return
			}
		}
	}
}

func sendItem(ctx context.Context, client *http.Client, apiAddr, email string, soldRatio float64) {
	item := generateFakeItem(soldRatio)
	payload, err := json.Marshal(item)
	if err != nil {
		log.Printf("Failed to marshal item: %v", err)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(
		reqCtx,
		http.MethodPost,
		apiAddr+"/api/v1/items",
		bytes.NewReader(payload),
	)
	if err != nil {
		log.Printf("Failed to build request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", email)

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("Failed to create item: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("Unexpected status %d: %s", resp.StatusCode, body)
		return
	}

	log.Printf("Successfully created item: %s (%s)", item.Name, item.ID)
}

func generateFakeItem(soldRatio float64) *entity.Item {
	categories := []entity.Category{
		entity.CategoryOveralls,
		entity.CategoryJackets,
		entity.CategoryPants,
		entity.CategorySoftshell,
		entity.CategoryShoes,
		entity.CategoryAccessories,
		entity.CategoryOther,
	}
	conditions := []entity.Condition{
		entity.ConditionNew,
		entity.ConditionLikeNew,
		entity.ConditionGood,
		entity.ConditionFair,
	}
	platforms := []entity.Platform{
		entity.PlatformVinted,
		entity.PlatformFacebook,
		entity.PlatformAukro,
		entity.PlatformDepop,
		entity.PlatformOther,
	}

	purchaseDate := gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
	purchasePrice := float64(gofakeit.Number(200, 2500))

	item := &entity.Item{
		ID:             uuid.NewString(),
		Name:           fmt.Sprintf("Reima %s", gofakeit.ProductName()),
		Notes:          gofakeit.Sentence(6),
		Size:           fmt.Sprintf("%d", gofakeit.Number(80, 140)),
		Condition:      conditions[gofakeit.Number(0, len(conditions)-1)],
		Category:       categories[gofakeit.Number(0, len(categories)-1)],
		PurchasePrice:  purchasePrice,
		PurchaseDate:   purchaseDate.Format("2006-01-02"),
		PurchaseSource: gofakeit.Company(),
		Status:         entity.StatusActive,
		Images:         []string{},
		Quantity:       1,
		Sales:          []entity.Sale{},
		CreatedAt:      purchaseDate.UnixMilli(),
	}

	if gofakeit.Float64Range(0, 1) < soldRatio {
		saleDate := gofakeit.DateRange(purchaseDate, time.Now())
		item.Status = entity.StatusSold
		item.SalePrice = purchasePrice + float64(gofakeit.Number(100, 1500))
		item.SaleDate = saleDate.Format("2006-01-02")
		item.SalePlatform = platforms[gofakeit.Number(0, len(platforms)-1)]
		item.Fees = float64(gofakeit.Number(0, 100))
		item.ShippingCost = float64(gofakeit.Number(0, 120))
	}

	return item
}
