// reviewctl is the operator console for the order review workflow. It
// drives the same engine packages a graphical front end would: the order
// list holder, the per-order session and the debounced product search.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/xelth-com/orderflowgo/internal/client"
	"github.com/xelth-com/orderflowgo/internal/config"
	"github.com/xelth-com/orderflowgo/internal/models"
	"github.com/xelth-com/orderflowgo/internal/review"
)

const usage = `Usage: reviewctl <command> [args]

Commands:
  list                              List all orders
  show <orderId>                    Show one order with its line items
  search                            Interactive product search (type, Enter; empty line quits)
  match <orderId> <itemId> <productId>  Set a line item's matched product
  complete <orderId>                Mark a reviewed order as completed
  export <orderId>                  Download the order's CSV export
  upload <file.pdf>                 Upload a scanned sales order
  watch                             Follow live order status events
`

func main() {
	baseURL := flag.String("api", "", "API base URL (defaults to API_BASE_URL)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}

	api := client.New(cfg.Client.BaseURL)
	notify := review.Notifier(func(n review.Notification) {
		prefix := "✅"
		if n.Kind == review.NotifyError {
			prefix = "❌"
		}
		fmt.Printf("%s %s\n", prefix, n.Message)
	})

	ctx := context.Background()
	args := flag.Args()

	switch args[0] {
	case "list":
		runList(ctx, api)
	case "show":
		runShow(ctx, api, notify, intArg(args, 1, "orderId"))
	case "search":
		runSearch(api)
	case "match":
		runMatch(ctx, api, notify, intArg(args, 1, "orderId"), intArg(args, 2, "itemId"), intArg(args, 3, "productId"))
	case "complete":
		runComplete(ctx, api, notify, intArg(args, 1, "orderId"))
	case "export":
		runExport(ctx, api, notify, intArg(args, 1, "orderId"), cfg.Client.DownloadDir)
	case "upload":
		runUpload(ctx, api, stringArg(args, 1, "file.pdf"))
	case "watch":
		runWatch(ctx, api)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func intArg(args []string, i int, name string) int {
	if len(args) <= i {
		log.Fatalf("Missing argument <%s>", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		log.Fatalf("Invalid %s: %q", name, args[i])
	}
	return n
}

func stringArg(args []string, i int, name string) string {
	if len(args) <= i {
		log.Fatalf("Missing argument <%s>", name)
	}
	return args[i]
}

func runList(ctx context.Context, api *client.Client) {
	list := review.NewOrderList(api)
	if err := list.Fetch(ctx); err != nil {
		log.Fatalf("Failed to fetch orders: %v", err)
	}
	for _, o := range list.Snapshot().Orders {
		fmt.Printf("%4d  %-12s  %s\n", o.ID, o.Status, o.Filename)
	}
}

func runShow(ctx context.Context, api *client.Client, notify review.Notifier, orderID int) {
	session := review.NewSession(api, notify, nil)
	if err := session.Load(ctx, orderID); err != nil {
		log.Fatalf("Failed to load order %d: %v", orderID, err)
	}

	details := session.Snapshot().Details
	fmt.Printf("Order %d: %s [%s]\n", details.Order.ID, details.Order.Filename, details.Order.Status)
	if review.CanCompleteReview(details.Order) {
		fmt.Println("  (review open: `reviewctl complete` is available)")
	}
	for _, item := range details.LineItems {
		match := "no match selected"
		if item.MatchedProductID != nil {
			match = fmt.Sprintf("product %d", *item.MatchedProductID)
		}
		fmt.Printf("%4d  %-50s  %-18s  %5.1f%% (%s)\n",
			item.ID, item.ExtractedText, match,
			item.ConfidenceScore, review.Band(item.ConfidenceScore))
	}
}

// runSearch feeds stdin lines through the debounced controller, the same
// path a match editor's input field takes.
func runSearch(api *client.Client) {
	ctrl := review.NewSearchController(api)
	defer ctrl.Close()

	results := make(chan review.SearchSnapshot, 16)
	unsubscribe := ctrl.Subscribe(func(s review.SearchSnapshot) {
		if !s.Loading {
			select {
			case results <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	fmt.Println("Type a product query (empty line to quit):")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		query := scanner.Text()
		if query == "" {
			return
		}
		ctrl.SetQuery(query)

		select {
		case snap := <-results:
			if snap.Err != "" {
				fmt.Printf("❌ %s\n", snap.Err)
				continue
			}
			for _, p := range snap.Results {
				fmt.Printf("%6d  %-60s  $%.2f\n", p.ID, p.Description, p.UnitPrice)
			}
			if len(snap.Results) == 0 {
				fmt.Println("  (no matches)")
			}
		case <-time.After(10 * time.Second):
			fmt.Println("❌ Search timed out")
		}
	}
}

func runMatch(ctx context.Context, api *client.Client, notify review.Notifier, orderID, itemID, productID int) {
	session := review.NewSession(api, notify, nil)
	if err := session.Load(ctx, orderID); err != nil {
		log.Fatalf("Failed to load order %d: %v", orderID, err)
	}
	if err := session.SelectMatch(ctx, itemID, productID); err != nil {
		os.Exit(1)
	}
}

func runComplete(ctx context.Context, api *client.Client, notify review.Notifier, orderID int) {
	session := review.NewSession(api, notify, nil)
	if err := session.Load(ctx, orderID); err != nil {
		log.Fatalf("Failed to load order %d: %v", orderID, err)
	}
	order, err := session.CompleteReview(ctx)
	if err != nil {
		os.Exit(1)
	}
	fmt.Printf("Order %d is now %s\n", order.ID, order.Status)
}

func runExport(ctx context.Context, api *client.Client, notify review.Notifier, orderID int, downloadDir string) {
	session := review.NewSession(api, notify, review.DirSaver{Dir: downloadDir})
	if err := session.Load(ctx, orderID); err != nil {
		log.Fatalf("Failed to load order %d: %v", orderID, err)
	}
	name, err := session.Export(ctx)
	if err != nil {
		os.Exit(1)
	}
	fmt.Printf("Saved %s\n", name)
}

func runUpload(ctx context.Context, api *client.Client, path string) {
	for event := range api.Upload(ctx, path) {
		if event.Done {
			if event.Err != nil {
				log.Fatalf("❌ Upload failed: %v", event.Err)
			}
			fmt.Printf("\n✅ Uploaded, order %d is processing\n", event.OrderID)
			return
		}
		if event.Total > 0 {
			fmt.Printf("\r⬆️  %d/%d bytes (%.0f%%)", event.Sent, event.Total,
				float64(event.Sent)/float64(event.Total)*100)
		}
	}
}

func runWatch(ctx context.Context, api *client.Client) {
	fmt.Println("Watching order status events (Ctrl+C to stop)...")
	watcher := review.NewWatcher(api.BaseURL(), func(order models.Order) {
		fmt.Printf("🔁 Order %d (%s) -> %s\n", order.ID, order.Filename, order.Status)
	})
	if err := watcher.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Watch failed: %v", err)
	}
}
