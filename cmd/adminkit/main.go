// Command adminkit is a terminal client for admin backends: log in, inspect
// schemas, browse records and run bulk actions from scripts or a shell.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/console"
	"github.com/goliatone/go-adminkit/pkg/schema"
	"github.com/goliatone/go-adminkit/pkg/table"
)

var (
	flagProfile string
	flagVerbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adminkit",
		Short: "Terminal client for admin backends",
		Long: `adminkit talks to an admin backend's schema-driven API.

Configuration lives in ~/.adminkit.yaml as named profiles:

  default: local
  profiles:
    local:
      base_url: http://localhost:8000/api/admin

A .env file or ADMINKIT_BASE_URL override the profile. Session tokens are
stored per profile under ~/.adminkit/ and refreshed automatically.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "P", "", "Config profile to use")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		modelsCmd(),
		schemaCmd(),
		listCmd(),
		getCmd(),
		deleteCmd(),
		actionCmd(),
		searchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type settings struct {
	profile string
	baseURL string
}

func loadSettings() (settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(".adminkit")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("ADMINKIT")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	profile := flagProfile
	if profile == "" {
		profile = v.GetString("default")
	}
	if profile == "" {
		profile = "default"
	}

	baseURL := v.GetString("base_url")
	if url := v.GetString("profiles." + profile + ".base_url"); url != "" {
		baseURL = url
	}
	if url := os.Getenv("ADMINKIT_BASE_URL"); url != "" {
		baseURL = url
	}
	if baseURL == "" {
		return settings{}, fmt.Errorf("no base_url configured for profile %q", profile)
	}
	return settings{profile: profile, baseURL: baseURL}, nil
}

func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func tokenPath(profile string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".adminkit", "tokens-"+profile+".json")
}

func newConsole() (*console.Console, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	log := newLogger()
	cl, err := client.New(cfg.baseURL,
		client.WithTokenStore(client.NewFileTokenStore(tokenPath(cfg.profile))),
		client.WithLogger(log),
		client.WithUserAgent("adminkit-cli"),
	)
	if err != nil {
		return nil, err
	}
	return console.New(cl, console.WithLogger(log)), nil
}

func loginCmd() *cobra.Command {
	var identifier string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			if identifier == "" {
				if err := survey.AskOne(&survey.Input{Message: "Email or username:"}, &identifier, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}
			var password string
			if err := survey.AskOne(&survey.Password{Message: "Password:"}, &password, survey.WithValidator(survey.Required)); err != nil {
				return err
			}

			result, err := con.Login(cmd.Context(), identifier, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", displayName(result.User))
			return nil
		},
	}
	cmd.Flags().StringVarP(&identifier, "user", "u", "", "Email or username")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			if err := con.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			user, err := con.Client().CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return printYAML(user)
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the registered apps and models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			global, err := con.Global(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "APP\tMODEL\tVERBOSE NAME")
			for _, app := range global.Apps {
				for _, m := range app.Models {
					fmt.Fprintf(w, "%s\t%s\t%s\n", app.AppLabel, m.ModelName, m.VerboseNamePlural)
				}
			}
			return w.Flush()
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <app> <model>",
		Short: "Print one model's schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			model, err := con.Model(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printYAML(model)
		},
	}
}

func listCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		search   string
		ordering string
		rawKVs   []string
	)
	cmd := &cobra.Command{
		Use:   "list <app> <model>",
		Short: "Browse a page of records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			app, modelName := args[0], args[1]

			q := console.ListQuery{
				Page:     page,
				PageSize: pageSize,
				Search:   search,
				Ordering: ordering,
				Filters:  map[string]string{},
			}
			for _, kv := range rawKVs {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("filter %q is not key=value", kv)
				}
				q.Filters[key] = value
			}

			model, err := con.Model(cmd.Context(), app, modelName)
			if err != nil {
				return err
			}
			result, err := con.List(cmd.Context(), app, modelName, q)
			if err != nil {
				return err
			}
			printRecords(model, result)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 25, "Records per page")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search term")
	cmd.Flags().StringVarP(&ordering, "ordering", "o", "", "Sort field, prefix with - for descending")
	cmd.Flags().StringArrayVarP(&rawKVs, "filter", "f", nil, "Filter as field=value, repeatable")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <app> <model> <id>",
		Short: "Fetch one record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			record, err := con.Record(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printYAML(record)
		},
	}
}

func deleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <app> <model> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			if !force {
				var confirmed bool
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Delete %s/%s %s?", args[0], args[1], args[2]),
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("Aborted.")
					return nil
				}
			}
			if err := con.Delete(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Println("Deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func actionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "action <app> <model> <action> <id>...",
		Short: "Run a bulk action against selected records",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			result, err := con.RunAction(cmd.Context(), args[0], args[1], args[2], args[3:])
			if err != nil {
				return err
			}
			if result.Message != "" {
				fmt.Println(result.Message)
			} else {
				fmt.Printf("Affected %d records.\n", result.AffectedCount)
			}
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search across every model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			con, err := newConsole()
			if err != nil {
				return err
			}
			result, err := con.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(result.Results) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "APP\tMODEL\tID\tDISPLAY")
			for _, hit := range result.Results {
				fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", hit.AppLabel, hit.ModelName, hit.ID, hit.Display)
			}
			return w.Flush()
		},
	}
}

func printRecords(model *schema.Model, page schema.Page) {
	columns := model.ListDisplay
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	headers := make([]string, 0, len(columns))
	for _, col := range columns {
		headers = append(headers, strings.ToUpper(col.Label))
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, record := range page.Results {
		cells := make([]string, 0, len(columns))
		for _, col := range columns {
			cells = append(cells, table.FormatValue(record[col.Name], table.DefaultDateFormat))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	fmt.Printf("Page %d of %d (%d records)\n", page.Page, page.TotalPages, page.Count)
}

func printYAML(v any) error {
	// Round-trip through JSON so json-tagged structs keep their wire names.
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return err
	}
	out, err := yaml.Marshal(plain)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func displayName(user schema.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Username
	}
	if name == "" {
		name = user.Email
	}
	return name
}
