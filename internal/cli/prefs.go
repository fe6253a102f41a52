package cli

import (
	"encoding/json"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and write your Jira user properties",
		Long:  "Preferences are stored as Jira user properties, e.g. " + DashboardProperty + " holds the default dashboard chart.",
	}
	cmd.AddCommand(newPrefsGetCmd(), newPrefsSetCmd())
	return cmd
}

func newPrefsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a user property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := appFrom(ctx).Jira()
			if err != nil {
				return err
			}
			me, err := client.CurrentUser(ctx)
			if err != nil {
				return err
			}
			raw, ok, err := client.UserProperty(ctx, me.AccountID, args[0])
			if err != nil {
				return err
			}
			if !ok {
				pterm.Info.Printfln("%s is not set", args[0])
				return nil
			}
			pterm.Println(string(raw))
			return nil
		},
	}
}

// propertyValue keeps valid JSON as is and stores anything else as a string.
func propertyValue(s string) any {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}

func newPrefsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a user property (VALUE is JSON, or a plain string)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := appFrom(ctx).Jira()
			if err != nil {
				return err
			}
			me, err := client.CurrentUser(ctx)
			if err != nil {
				return err
			}
			if err := client.SetUserProperty(ctx, me.AccountID, args[0], propertyValue(args[1])); err != nil {
				return err
			}
			pterm.Success.Printfln("%s saved", args[0])
			return nil
		},
	}
}
