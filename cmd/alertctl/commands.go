package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/quocanhngo/agrosynth/internal/client"
	"github.com/quocanhngo/agrosynth/internal/mapview"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/spf13/cobra"
)

func newDeviceIDCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "device-id",
		Short: "Print this device's identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), e.api.DeviceID())
			return nil
		},
	}
}

func newCreateCmd(e *env) *cobra.Command {
	var (
		name, description, weatherType string
		location, image                string
		lat, lng                       float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a new weather alert",
		Long: "Report a new weather alert. Without --location or --lat/--lng the\n" +
			"current position is used, falling back to New York City.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form := client.NewForm(e.api, client.NewUploader(e.api), e.resolver, nil, clockwork.NewRealClock())

			switch {
			case cmd.Flags().Changed("lat"):
				if err := form.PickLocation(ctx, lat, lng); err != nil {
					return err
				}
			case location != "":
				form.SetLocationText(location)
			default:
				form.Locate(ctx)
			}
			form.SetName(name)
			form.SetDescription(description)
			form.SetWeatherType(model.WeatherType(strings.ToLower(weatherType)))

			if image != "" {
				if err := form.AttachImage(ctx, image); err != nil {
					return err
				}
			}

			alert, err := form.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Alert %s saved at %s\n", alert.ID, alert.Location)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "alert name")
	f.StringVar(&description, "desc", "", "what you observed")
	f.StringVar(&weatherType, "type", "", "weather type: "+weatherTypeList())
	f.StringVar(&location, "location", "", "place name")
	f.Float64Var(&lat, "lat", 0, "latitude")
	f.Float64Var(&lng, "lng", 0, "longitude")
	f.StringVar(&image, "image", "", "path to a photo")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsMutuallyExclusive("location", "lat")
	return cmd
}

func newListCmd(e *env) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List this device's alerts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scope := client.ScopeDevice
			if all {
				scope = client.ScopeAll
			}
			list := client.NewAlertList(e.api, scope, e.recent)
			if err := list.Refresh(cmd.Context()); err != nil {
				return err
			}

			entries := list.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No alerts yet.")
				return nil
			}
			records := make([]model.AlertRecord, 0, len(entries))
			for _, entry := range entries {
				records = append(records, entry.AlertRecord)
			}
			return printAlerts(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list alerts from every device")
	return cmd
}

func newDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of this device's alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid alert id %q", args[0])
			}

			list := client.NewAlertList(e.api, client.ScopeDevice, e.recent)
			if err := list.Refresh(cmd.Context()); err != nil {
				return err
			}

			var confirm client.Confirmer = client.ConfirmFunc(func(string) bool { return true })
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			deleted, err := list.Delete(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newRecentCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show the last alerts seen on this device without contacting the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			preview := e.recent.Preview()
			if len(preview) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent alerts.")
				return nil
			}
			return printAlerts(cmd.OutOrStdout(), preview)
		},
	}
}

func newSubscribeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <email>",
		Short: "Receive an email for every new alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := e.api.Subscribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "📧 Subscribed %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already subscribed\n", args[0])
			}
			return nil
		},
	}
}

func newLocateCmd(e *env) *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Resolve coordinates to a place name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := client.Coordinates{Lat: lat, Lng: lng}
			fmt.Fprintln(cmd.OutOrStdout(), e.resolver.PlaceName(cmd.Context(), c))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", client.FallbackCoordinates.Lat, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", client.FallbackCoordinates.Lng, "longitude")
	return cmd
}

// promptConfirmer asks on out and accepts "y" or "yes" from in
func promptConfirmer(in io.Reader, out io.Writer) client.Confirmer {
	reader := bufio.NewReader(in)
	return client.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	})
}

func printAlerts(w io.Writer, alerts []model.AlertRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tLOCATION\tCREATED")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.ID, mapview.Icon(a.WeatherType).Label, a.Name, a.Location,
			a.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func weatherTypeList() string {
	names := make([]string, 0, len(model.WeatherTypes))
	for _, t := range model.WeatherTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
