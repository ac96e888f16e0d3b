// Command loadgen drives synthetic order traffic against a running POS
// backend. Each worker opens bills, adds items, sends them to the kitchen
// and settles them with cash payments. Identifiers captured from responses
// are stored in a parameter pool so later requests can reuse them the way
// real terminals do.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/edgepos/tools/loadgen/internal/pool"
)

type options struct {
	baseURL    string
	token      string
	workers    int
	duration   time.Duration
	brandID    string
	outletCode string
}

type counters struct {
	requests int64
	errors   int64
	bills    int64
	payments int64
}

var menu = []struct {
	ProductID string
	Name      string
	Station   string
	Price     float64
}{
	{"0b2f9a1e-3f64-4a14-9a71-111111111111", "Nasi Goreng", "hot_kitchen", 45000},
	{"0b2f9a1e-3f64-4a14-9a71-222222222222", "Sate Ayam", "grill", 38000},
	{"0b2f9a1e-3f64-4a14-9a71-333333333333", "Gado Gado", "cold_kitchen", 32000},
	{"0b2f9a1e-3f64-4a14-9a71-444444444444", "Es Teh Manis", "bar", 12000},
	{"0b2f9a1e-3f64-4a14-9a71-555555555555", "Kopi Tubruk", "bar", 18000},
}

func main() {
	opts := options{}
	flag.StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "POS backend base URL")
	flag.StringVar(&opts.token, "token", "", "bearer token for authenticated endpoints")
	flag.IntVar(&opts.workers, "workers", 4, "number of concurrent terminals to simulate")
	flag.DurationVar(&opts.duration, "duration", time.Minute, "how long to run")
	flag.StringVar(&opts.brandID, "brand-id", "", "brand whose bills the workers open")
	flag.StringVar(&opts.outletCode, "outlet-code", "JKT01", "outlet code used for bill numbering")
	flag.Parse()

	if opts.brandID == "" {
		fmt.Fprintln(os.Stderr, "error: -brand-id is required")
		flag.Usage()
		os.Exit(1)
	}

	params := pool.NewShardedParameterPool(pool.DefaultPoolConfig())
	defer params.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stats := &counters{}
	var wg sync.WaitGroup
	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			runWorker(ctx, opts, params, stats, rand.New(rand.NewSource(seed)))
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()

	poolStats, _ := params.Stats(context.Background())
	fmt.Printf("requests=%d errors=%d bills=%d payments=%d pool_hit_rate=%.2f\n",
		atomic.LoadInt64(&stats.requests),
		atomic.LoadInt64(&stats.errors),
		atomic.LoadInt64(&stats.bills),
		atomic.LoadInt64(&stats.payments),
		poolStats.HitRate())
}

func runWorker(ctx context.Context, opts options, params pool.ParameterPool, stats *counters, rng *rand.Rand) {
	client := &http.Client{Timeout: 10 * time.Second}
	for ctx.Err() == nil {
		if err := runOrderCycle(ctx, client, opts, params, stats, rng); err != nil {
			atomic.AddInt64(&stats.errors, 1)
			// Back off briefly so a down backend does not spin the loop.
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return
			}
		}
	}
}

// runOrderCycle plays one bill through its full life: open, add one or two
// items, send to kitchen, pay cash.
func runOrderCycle(ctx context.Context, client *http.Client, opts options, params pool.ParameterPool, stats *counters, rng *rand.Rand) error {
	bill, err := postJSON(ctx, client, opts, stats, "/api/v1/bills", map[string]any{
		"brand_id":    opts.brandID,
		"outlet_code": opts.outletCode,
		"bill_type":   "dine_in",
		"guest_count": 1 + rng.Intn(4),
		"tax_percent": 10,
	})
	if err != nil {
		return err
	}
	billID, _ := bill["id"].(string)
	if billID == "" {
		return fmt.Errorf("bill response missing id")
	}
	pv := pool.NewParameterValue(billID, pool.SemanticTypeBillID, 5*time.Minute)
	pv.WithSource("POST /bills", "$.id")
	if _, err := params.Add(ctx, pv); err != nil {
		return err
	}
	atomic.AddInt64(&stats.bills, 1)

	total := 0.0
	for i := 0; i < 1+rng.Intn(2); i++ {
		item := menu[rng.Intn(len(menu))]
		qty := 1 + rng.Intn(3)
		total += item.Price * float64(qty)
		if _, err := postJSON(ctx, client, opts, stats, "/api/v1/bills/"+billID+"/items", map[string]any{
			"product_id":   item.ProductID,
			"product_name": item.Name,
			"station":      item.Station,
			"quantity":     qty,
			"unit_price":   item.Price,
		}); err != nil {
			return err
		}
	}

	if _, err := postJSON(ctx, client, opts, stats, "/api/v1/bills/"+billID+"/send", nil); err != nil {
		return err
	}

	// Pay a generous round amount so the bill closes with change.
	payment, err := postJSON(ctx, client, opts, stats, "/api/v1/bills/"+billID+"/payments", map[string]any{
		"method": "cash",
		"amount": total * 1.5,
	})
	if err != nil {
		return err
	}
	if payID, _ := payment["id"].(string); payID != "" {
		ppv := pool.NewParameterValue(payID, pool.SemanticTypePaymentID, 5*time.Minute)
		ppv.WithSource("POST /bills/{id}/payments", "$.id")
		if _, err := params.Add(ctx, ppv); err != nil {
			return err
		}
	}
	atomic.AddInt64(&stats.payments, 1)
	return nil
}

func postJSON(ctx context.Context, client *http.Client, opts options, stats *counters, path string, body any) (map[string]any, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	atomic.AddInt64(&stats.requests, 1)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", req.Method, path, resp.StatusCode, raw)
	}

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data == nil {
		flat := map[string]any{}
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, err
		}
		return flat, nil
	}
	return envelope.Data, nil
}
