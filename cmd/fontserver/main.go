package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akari2600/macos-fonts-mcp/internal/profile"
	"github.com/akari2600/macos-fonts-mcp/internal/publish"
	"github.com/akari2600/macos-fonts-mcp/plugin/fonts"
	"github.com/akari2600/macos-fonts-mcp/server"
)

const version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "fontserver",
	Short: "Font discovery, conversion, and publish tool server",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Version: version,
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		setupLogger(instanceProfile)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := objectStore(instanceProfile)
		if err != nil {
			return err
		}

		s, err := server.NewServer(instanceProfile, library(), store)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received")
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		s.Shutdown(context.Background())
		return nil
	},
}

// objectStore builds the S3-compatible store from the profile. Publishing
// fails per call when no credentials are configured.
func objectStore(p *profile.Profile) (publish.ObjectStore, error) {
	return publish.NewMinioStore(publish.MinioConfig{
		Endpoint:  p.S3Endpoint,
		AccessKey: p.S3AccessKey,
		SecretKey: p.S3SecretKey,
		UseSSL:    p.S3UseSSL,
	})
}

// library returns the platform font collaborator. No provider is compiled
// into this build; discovery and conversion report unavailable until one
// is wired in.
func library() fonts.Library {
	return fonts.UnavailableLibrary{}
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")

	for _, flag := range []string{"mode", "addr", "port", "data"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("fonts")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
