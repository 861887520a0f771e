package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/function61/gokit/dynversion"
	"github.com/function61/gokit/envvar"
	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-visitorcounter/pkg/vcstore"
	"github.com/function61/lambda-visitorcounter/pkg/visitorcounter"
	"github.com/spf13/cobra"
)

func main() {
	app := &cobra.Command{
		Use:     os.Args[0],
		Short:   "Visitor counter & alert forwarding",
		Version: dynversion.Version,
	}

	app.AddCommand(counterEntry())

	app.AddCommand(alertEntry())

	app.AddCommand(restApiCliEntry())

	app.AddCommand(smokeTestEntry())

	app.AddCommand(&cobra.Command{
		Use:    "lambda",
		Hidden: true,
		Run: func(*cobra.Command, []string) {
			lambdaHandler()
		},
	})

	exitIfError(app.Execute())
}

func getStore(awsSession *session.Session, logger *log.Logger) (vcstore.Store, error) {
	tableName, err := envvar.Required("DYNAMODB_TABLE")
	if err != nil {
		return nil, err
	}

	return vcstore.NewDynamoDbStore(
		dynamodb.New(awsSession),
		tableName,
		logex.Prefix("vcstore", logger)), nil
}

func getCounter(store vcstore.Store, logger *log.Logger) *visitorcounter.Counter {
	return visitorcounter.New(
		store,
		time.Now,
		logex.Prefix("visitorcounter", logger))
}

func exitIfError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
