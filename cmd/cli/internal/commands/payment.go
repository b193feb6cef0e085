package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/clarkmarket/marketctl/internal/payment"
)

type PaymentCmd struct {
	Status PaymentStatusCmd `cmd:"" help:"Check a payment's status once"`
	Wait   PaymentWaitCmd   `cmd:"" help:"Block until a payment reaches a terminal status"`
}

type PaymentStatusCmd struct {
	clientFlags
	Reference string `arg:"" help:"Payment reference"`
}

func (s *PaymentStatusCmd) Run(ctx context.Context, globals *Globals) error {
	client, manager, err := s.hydrated(ctx)
	if err != nil {
		return err
	}

	status, err := statusChecker(client, manager).CheckStatus(ctx, s.Reference)
	if err != nil {
		return fmt.Errorf("failed to check payment status: %w", err)
	}

	switch {
	case status.Succeeded():
		fmt.Println("Payment confirmed")
	case status.Terminal():
		fmt.Printf("Payment %s, restart the flow to try again\n", status)
	default:
		fmt.Println("Payment not yet completed, finish it in the payment tab")
	}

	return nil
}

type PaymentWaitCmd struct {
	clientFlags
	Reference string        `arg:"" help:"Payment reference"`
	Interval  time.Duration `help:"Status poll interval" default:"4s"`
}

func (w *PaymentWaitCmd) Run(ctx context.Context, globals *Globals) error {
	client, manager, err := w.hydrated(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status, err := payment.Await(ctx, statusChecker(client, manager), w.Reference, w.Interval)
	if err != nil {
		return fmt.Errorf("gave up waiting for payment: %w", err)
	}

	if !status.Succeeded() {
		return fmt.Errorf("payment %s", status)
	}

	fmt.Println("Payment confirmed")
	return nil
}
