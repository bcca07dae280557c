package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/quocanhngo/agrosynth/internal/client"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// env is what every command needs once flags and environment are resolved
type env struct {
	store    client.LocalStore
	api      *client.AlertAPI
	resolver *client.Resolver
	recent   *client.RecentCache
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("AGROSYNTH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	e := &env{}
	root := &cobra.Command{
		Use:           "alertctl",
		Short:         "Report and manage crowd-sourced weather alerts",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.load(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "http://localhost:8080", "alert API base URL")
	flags.String("store", "", "local store file (default: user config dir)")
	flags.String("geocode-url", "", "query Nominatim at this URL directly instead of through the API")
	flags.String("geocode-proxy", "", "CORS proxy prefix for direct Nominatim queries")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	_ = v.BindPFlags(flags)

	root.AddCommand(
		newDeviceIDCmd(e),
		newCreateCmd(e),
		newListCmd(e),
		newDeleteCmd(e),
		newRecentCmd(e),
		newSubscribeCmd(e),
		newLocateCmd(e),
	)
	return root
}

func (e *env) load(v *viper.Viper) error {
	path := v.GetString("store")
	if path == "" {
		var err error
		if path, err = client.DefaultStorePath(); err != nil {
			return fmt.Errorf("locate local store: %w", err)
		}
	}
	store, err := client.OpenFileStore(path)
	if err != nil {
		return err
	}

	e.store = store
	e.recent = client.NewRecentCache(store)
	e.api = client.NewAlertAPI(v.GetString("api-url"), client.DeviceID(store), v.GetDuration("timeout"))

	// Place names come from the server's proxy unless a direct geocoder is configured
	var reverser geocode.Reverser = e.api
	if url := v.GetString("geocode-url"); url != "" {
		nominatim := geocode.NewNominatim(geocode.NominatimConfig{
			BaseURL:     url,
			ProxyPrefix: v.GetString("geocode-proxy"),
			UserAgent:   "agrosynth-alertctl/1.0",
			Timeout:     v.GetDuration("timeout"),
		}, nil)
		reverser = geocode.NewCached(nominatim, geocode.NewMemoryCache(time.Hour), nil)
	}
	e.resolver = client.NewResolver(client.UnavailableLocator{}, reverser)
	return nil
}
