package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/internal/version"
	"github.com/hrygo/studysheet/server"
	"github.com/hrygo/studysheet/store"
	"github.com/hrygo/studysheet/store/db"
)

var rootCmd = &cobra.Command{
	Use:           "studysheet",
	Short:         "Printable Chinese character review sheets and exponent-rule worksheets",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		st, err := openStore(ctx, instanceProfile)
		if err != nil {
			return err
		}
		s, err := server.NewServer(ctx, instanceProfile, st)
		if err != nil {
			st.Close()
			return errors.Wrap(err, "failed to create server")
		}

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		if err := s.Start(ctx); err != nil {
			st.Close()
			return errors.Wrap(err, "failed to start server")
		}
		printGreetings(instanceProfile, s.Addr())

		<-c
		s.Shutdown(context.Background())
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", profile.DriverFile, "character store driver: file, sqlite or postgres")
	flags.String("dsn", "", "database source name (sqlite path or postgres DSN)")
	flags.String("character-file", "", "master character list for the file driver (default data.txt in the data directory)")
	flags.String("font-paths", "", "TrueType fonts to try before the system ones, separated by the OS list separator")
	flags.Int("max-renders", 3, "maximum concurrent PDF renders")

	for _, key := range []string{"mode", "addr", "port", "data", "driver", "dsn", "character-file", "font-paths", "max-renders"} {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("studysheet")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, selectCmd, sheetCmd, worksheetCmd, charsCmd)
}

// loadProfile builds a validated profile from flags and STUDYSHEET_* variables
// and installs the default logger.
func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:          viper.GetString("mode"),
		Addr:          viper.GetString("addr"),
		Port:          viper.GetInt("port"),
		Data:          viper.GetString("data"),
		Driver:        viper.GetString("driver"),
		DSN:           viper.GetString("dsn"),
		CharacterFile: viper.GetString("character-file"),
		MaxRenders:    viper.GetInt("max-renders"),
	}
	if raw := viper.GetString("font-paths"); raw != "" {
		instanceProfile.FontPaths = filepath.SplitList(raw)
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)

	level := slog.LevelInfo
	if instanceProfile.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return instanceProfile, nil
}

// openStore opens the configured driver and migrates SQL schemas.
func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	st := store.New(dbDriver, instanceProfile)
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	return st, nil
}

func printGreetings(instanceProfile *profile.Profile, addr string) {
	fmt.Printf("studysheet %s started successfully!\n", instanceProfile.Version)
	fmt.Printf("Data directory: %s, driver: %s\n", instanceProfile.Data, instanceProfile.Driver)
	fmt.Printf("Listening on http://%s\n", addr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if e, ok := apperrors.As(err); ok {
			fmt.Fprintln(os.Stderr, "Error:", e.Message)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
