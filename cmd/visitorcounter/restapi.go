package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/function61/gokit/envvar"
	"github.com/function61/gokit/httputils"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/gokit/taskrunner"
	"github.com/function61/lambda-visitorcounter/pkg/vcstore"
	"github.com/function61/lambda-visitorcounter/pkg/visitorcounter"
	"github.com/spf13/cobra"
)

func newRestApi(awsSession *session.Session, logger *log.Logger) http.Handler {
	return restApiFromEnv(func() (vcstore.Store, error) {
		return getStore(awsSession, logger)
	}, logger)
}

// origin is resolved before the store, so a missing table is still reported with CORS headers
func restApiFromEnv(storeFromEnv func() (vcstore.Store, error), logger *log.Logger) http.Handler {
	allowOrigin, err := envvar.Required("CORS_ALLOW_ORIGIN")
	if err != nil {
		return misconfiguredRestApi("", err, logger)
	}

	store, err := storeFromEnv()
	if err != nil {
		return misconfiguredRestApi(allowOrigin, err, logger)
	}

	return newRestApiWithStore(store, allowOrigin, logger)
}

func newRestApiWithStore(store vcstore.Store, allowOrigin string, logger *log.Logger) http.Handler {
	return visitorcounter.NewRestApi(
		getCounter(store, logger),
		allowOrigin,
		logex.Prefix("restapi", logger))
}

// config error details go to our logs, not to browsers
func misconfiguredRestApi(allowOrigin string, err error, logger *log.Logger) http.Handler {
	logex.Levels(logger).Error.Printf("misconfigured: %v", err)

	return visitorcounter.NewMisconfiguredRestApi(allowOrigin)
}

func restApiCliEntry() *cobra.Command {
	addr := ":80"
	inMemory := false

	cmd := &cobra.Command{
		Use:   "restapi",
		Short: "Start REST API (used mainly for dev/testing)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			var handler http.Handler
			if inMemory {
				handler = restApiFromEnv(func() (vcstore.Store, error) {
					return vcstore.NewMemoryStore(), nil
				}, logger)
			} else {
				awsSession, err := session.NewSession()
				exitIfError(err)

				handler = newRestApi(awsSession, logger)
			}

			exitIfError(runStandaloneRestApi(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				addr,
				handler,
				logger))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "", addr, "Address to listen on")
	cmd.Flags().BoolVarP(&inMemory, "in-memory", "", inMemory, "Use in-memory store instead of DynamoDB")

	return cmd
}

func runStandaloneRestApi(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	tasks := taskrunner.New(ctx, logger)

	tasks.Start("listener "+srv.Addr, func(_ context.Context, _ string) error {
		return httputils.RemoveGracefulServerClosedError(srv.ListenAndServe())
	})

	tasks.Start("listenershutdowner", httputils.ServerShutdownTask(srv))

	return tasks.Wait()
}
