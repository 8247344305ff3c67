package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Wrapper for survey functions to allow mocking in tests
var askOneFunc = survey.AskOne

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively set up syncbench configuration",
	Long:  `Runs an interactive wizard to configure the control plane, result store, and notifications, and writes the answers to config.yaml.`,
	RunE:  runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Welcome to syncbench configuration!")
	fmt.Fprintln(cmd.OutOrStdout(), "-----------------------------------")

	answers := struct {
		ControlPlane string
		Namespace    string
		StoreType    string
		StoreDSN     string
		Count        int
		Parallelism  int
		EnableSlack  bool
		SlackChannel string
		SlackToken   string
	}{}

	err := askOneFunc(&survey.Select{
		Message: "Choose your control plane backend:",
		Options: []string{"kubernetes", "docker", "fake"},
		Default: "kubernetes",
	}, &answers.ControlPlane)
	if err != nil {
		return err
	}

	if answers.ControlPlane == "kubernetes" {
		err = askOneFunc(&survey.Input{
			Message: "Kubernetes namespace for benchmark workloads:",
			Default: "default",
		}, &answers.Namespace)
		if err != nil {
			return err
		}
	}

	err = askOneFunc(&survey.Select{
		Message: "Choose your result store backend:",
		Options: []string{"sqlite", "postgres"},
		Default: "sqlite",
	}, &answers.StoreType)
	if err != nil {
		return err
	}

	defaultDSN := "syncbench.db"
	if answers.StoreType == "postgres" {
		defaultDSN = "postgres://localhost:5432/syncbench?sslmode=disable"
	}
	err = askOneFunc(&survey.Input{
		Message: "Store DSN:",
		Default: defaultDSN,
	}, &answers.StoreDSN)
	if err != nil {
		return err
	}

	err = askOneFunc(&survey.Input{
		Message: "Default workload count per run:",
		Default: "10",
	}, &answers.Count)
	if err != nil {
		return err
	}

	err = askOneFunc(&survey.Input{
		Message: "Provisioning parallelism:",
		Default: "4",
	}, &answers.Parallelism)
	if err != nil {
		return err
	}

	err = askOneFunc(&survey.Confirm{
		Message: "Enable Slack notifications?",
		Default: false,
	}, &answers.EnableSlack)
	if err != nil {
		return err
	}

	if answers.EnableSlack {
		err = askOneFunc(&survey.Input{
			Message: "Slack Channel:",
			Default: "#benchmarks",
		}, &answers.SlackChannel)
		if err != nil {
			return err
		}
		err = askOneFunc(&survey.Password{
			Message: "Slack Bot Token (leave empty to keep using the environment):",
		}, &answers.SlackToken)
		if err != nil {
			return err
		}
	}

	viper.Set("controlplane.type", answers.ControlPlane)
	if answers.Namespace != "" {
		viper.Set("controlplane.namespace", answers.Namespace)
	}
	viper.Set("store.type", answers.StoreType)
	viper.Set("store.dsn", answers.StoreDSN)
	viper.Set("scenario.count", answers.Count)
	viper.Set("scenario.parallelism", answers.Parallelism)
	if answers.EnableSlack {
		viper.Set("notifications.slack.enabled", true)
		viper.Set("notifications.slack.channel", answers.SlackChannel)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "config.yaml"
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not write %s: %v\n", configFile, err)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", configFile)
	}

	if answers.EnableSlack && answers.SlackToken != "" {
		if err := appendEnvSecret("SLACK_BOT_USER_TOKEN", answers.SlackToken); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not update .env: %v\n", err)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Secrets saved to .env")
		}
	}

	return nil
}

// appendEnvSecret adds key=value to the local .env unless the key is already
// present.
func appendEnvSecret(key, value string) error {
	existing, _ := os.ReadFile(".env")
	if strings.Contains(string(existing), key+"=") {
		return nil
	}

	f, err := os.OpenFile(".env", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	content := ""
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		content = "\n"
	}
	content += fmt.Sprintf("%s=%s\n", key, value)
	_, err = f.WriteString(content)
	return err
}
