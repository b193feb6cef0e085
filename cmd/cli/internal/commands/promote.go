package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/clarkmarket/marketctl/internal/api"
	"github.com/clarkmarket/marketctl/internal/payment"
)

type PromoteCmd struct {
	clientFlags
	ProductID string            `help:"Product to promote" required:""`
	Plan      string            `help:"Promotion plan" default:"premium"`
	Field     map[string]string `help:"Additional form fields (key=value)"`
	Image     []string          `help:"Image files to attach" type:"existingfile"`
	Detach    bool              `help:"Create the payment and exit without polling"`
	Interval  time.Duration     `help:"Status poll interval" default:"4s"`
}

func (p *PromoteCmd) Run(ctx context.Context, globals *Globals) error {
	client, manager, err := p.hydrated(ctx)
	if err != nil {
		return err
	}

	fields := map[string]string{
		"productId": p.ProductID,
		"plan":      p.Plan,
	}
	for key, value := range p.Field {
		fields[key] = value
	}

	uploads := fileUploads(p.Image)

	var intent *api.PaymentIntent
	err = manager.WithAuth(ctx, func(ctx context.Context, token string) error {
		created, err := client.CreatePremiumPayment(ctx, token, fields, uploads)
		if err != nil {
			return err
		}
		intent = created
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	fmt.Printf("Payment created\n")
	fmt.Printf("  Reference: %s\n", intent.Reference)
	fmt.Printf("  Pay at:    %s\n", intent.PaymentURL)

	if p.Detach {
		fmt.Printf("\nCheck later with: marketctl payment status %s\n", intent.Reference)
		return nil
	}

	// Poll until the payment settles or the user interrupts.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := payment.New(statusChecker(client, manager),
		payment.WithInterval(p.Interval),
		payment.WithOpener(openURL),
	)
	outcomes := poller.Start(intent.Reference, intent.PaymentURL)
	defer poller.Stop()

	fmt.Println("\nComplete the payment in your browser, waiting for confirmation...")

	select {
	case <-ctx.Done():
		fmt.Printf("\nStill pending. Check later with: marketctl payment status %s\n", intent.Reference)
		return nil
	case outcome := <-outcomes:
		if !outcome.Status.Succeeded() {
			return fmt.Errorf("payment %s: re-run promote to try again", outcome.Status)
		}
	}

	fmt.Println("Payment confirmed, promotion is active")

	// The payment changed the renewal picture, re-fetch it.
	err = manager.WithAuth(ctx, func(ctx context.Context, token string) error {
		remaining, err := client.ProductsNeedingRenewal(ctx, token)
		if err != nil {
			return err
		}
		fmt.Printf("%d product(s) still need renewal\n", len(remaining))
		return nil
	})
	if err != nil {
		// Informational only, the payment itself succeeded.
		fmt.Printf("Could not refresh renewal list: %v\n", err)
	}

	return nil
}

// fileUploads maps image paths onto multipart uploads. Each upload
// opens its file per request attempt, keeping a renew-and-retry of the
// payment request intact.
func fileUploads(paths []string) []api.Upload {
	uploads := make([]api.Upload, 0, len(paths))
	for _, path := range paths {
		uploads = append(uploads, api.Upload{
			Field:    "images",
			Filename: filepath.Base(path),
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}
	return uploads
}
