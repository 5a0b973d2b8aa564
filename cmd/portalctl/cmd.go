package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	adminuserstore "github.com/dalemusser/ccbportal/internal/app/store/adminusers"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	connectFunc      = connectMongo      // mockable

	errHelp = errors.New("help provided")
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "ccb_portal"
)

type commandLine struct {
	users      *adminuserstore.Store
	disconnect func()
}

func (cli *commandLine) close() {
	if cli.disconnect != nil {
		cli.disconnect()
		cli.disconnect = nil
	}
}

func newRootCmd(cli *commandLine) *cobra.Command {
	var mongoURI, mongoDB string

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Manage CCB portal staff accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cli.users != nil {
				return nil
			}
			db, disconnect, err := connectFunc(cmd.Context(), mongoURI, mongoDB)
			if err != nil {
				return err
			}
			cli.users = adminuserstore.New(db)
			cli.disconnect = disconnect
			return nil
		},
	}
	root.PersistentFlags().StringVar(&mongoURI, "mongo-uri", envOr("CCBPORTAL_MONGO_URI", defaultMongoURI), "MongoDB connection URI")
	root.PersistentFlags().StringVar(&mongoDB, "mongo-database", envOr("CCBPORTAL_MONGO_DATABASE", defaultMongoDatabase), "MongoDB database name")

	root.AddCommand(newAddUserCmd(cli), newResetPasswordCmd(cli))
	return root
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func connectMongo(ctx context.Context, uri, database string) (*mongo.Database, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", uri, err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return client.Database(database), func() { _ = client.Disconnect(context.Background()) }, nil
}

// promptPassword reads a password without echo. With confirm the user
// types it twice.
func promptPassword(out io.Writer, confirm bool) (string, error) {
	fmt.Fprint(out, "Enter password: ")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errors.New("password must not be empty")
	}
	if confirm {
		fmt.Fprint(out, "Enter password again: ")
		again, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		if string(again) != string(pwd) {
			return "", errors.New("passwords do not match")
		}
	}
	return string(pwd), nil
}
