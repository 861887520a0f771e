package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/lambda-visitorcounter/pkg/vcstore"
	"github.com/function61/lambda-visitorcounter/pkg/visitorcounter"
	"github.com/scylladb/termtables"
	"github.com/spf13/cobra"
)

func counterEntry() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Inspect the visitor counter",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current count",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(counterShow(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				dynamoDbStoreFromEnv()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "visitor [ip]",
		Short: "Show when a visitor was last counted",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(counterVisitor(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				dynamoDbStoreFromEnv(),
				args[0],
				time.Now()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "visit [ip]",
		Short: "Visit as if from given IP (counts, unless within cooldown)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(counterVisit(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				dynamoDbStoreFromEnv(),
				args[0]))
		},
	})

	return cmd
}

func counterShow(ctx context.Context, store vcstore.Store) error {
	count, err := getCounter(store, logex.StandardLogger()).Count(ctx)
	if err != nil {
		return err
	}

	view := termtables.CreateTable()
	view.AddHeaders("Id", "Count")
	view.AddRow(vcstore.CounterId, count)

	fmt.Println(view.Render())

	return nil
}

func counterVisitor(ctx context.Context, store vcstore.Store, ipSerialized string, now time.Time) error {
	ip := net.ParseIP(ipSerialized)
	if ip == nil {
		return fmt.Errorf("not an IP: %s", ipSerialized)
	}

	visitorId := visitorcounter.VisitorId(ip)

	visitor, err := store.GetItem(ctx, visitorId)
	if err != nil {
		return err
	}

	if visitor == nil {
		return fmt.Errorf("never counted: %s", visitorId)
	}

	cooldownEnds := "?"
	if lastVisit, err := vcstore.ParseLastVisit(visitor.LastVisit); err == nil {
		cooldownEnds = lastVisit.Add(visitorcounter.CooldownWindow).Format(time.RFC3339)
		if !now.Before(lastVisit.Add(visitorcounter.CooldownWindow)) {
			cooldownEnds += " (over)"
		}
	}

	view := termtables.CreateTable()
	view.AddHeaders("Id", "Last counted", "Cooldown ends")
	view.AddRow(visitor.Id, visitor.LastVisit, cooldownEnds)

	fmt.Println(view.Render())

	return nil
}

func counterVisit(ctx context.Context, store vcstore.Store, ipSerialized string) error {
	ip := net.ParseIP(ipSerialized)
	if ip == nil {
		return fmt.Errorf("not an IP: %s", ipSerialized)
	}

	result, err := getCounter(store, logex.StandardLogger()).Visit(ctx, ip)
	if err != nil {
		return err
	}

	if result.Counted {
		fmt.Printf("Counted; count is now %d\n", result.Count)
	} else {
		fmt.Printf("Within cooldown, not counted; count is %d\n", result.Count)
	}

	return nil
}

func dynamoDbStoreFromEnv() vcstore.Store {
	awsSession, err := session.NewSession()
	exitIfError(err)

	store, err := getStore(awsSession, logex.StandardLogger())
	exitIfError(err)

	return store
}
