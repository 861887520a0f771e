package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/function61/gokit/ossignal"
	"github.com/function61/lambda-visitorcounter/pkg/visitorcounterclient"
	"github.com/spf13/cobra"
)

func smokeTestEntry() *cobra.Command {
	return &cobra.Command{
		Use:   "smoketest [endpoint]",
		Short: "Verify a deployed visitor counter (counts once, CORS headers present)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(smokeTest(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				visitorcounterclient.New(args[0]),
				os.Stdout))
		},
	}
}

// two back-to-back visits from us. the second one is within the cooldown window, so it
// must not change the count.
func smokeTest(ctx context.Context, client *visitorcounterclient.Client, output io.Writer) error {
	first, err := client.Visit(ctx)
	if err != nil {
		return fmt.Errorf("first visit: %w", err)
	}

	if first.AllowOrigin == "" {
		return errors.New("Access-Control-Allow-Origin missing")
	}

	second, err := client.Visit(ctx)
	if err != nil {
		return fmt.Errorf("second visit: %w", err)
	}

	if second.Count != first.Count {
		return fmt.Errorf("repeat visit changed count: %d -> %d", first.Count, second.Count)
	}

	fmt.Fprintf(output, "OK; count=%d allow-origin=%s\n", second.Count, second.AllowOrigin)

	return nil
}
