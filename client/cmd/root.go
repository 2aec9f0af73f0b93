package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/updatectl/updatectl/client/internal"
	"github.com/updatectl/updatectl/client/updateengine"
	"github.com/updatectl/updatectl/util"
)

const (
	updateFlag      = "update"
	payloadFlag     = "payload"
	headersFlag     = "headers"
	suspendFlag     = "suspend"
	resumeFlag      = "resume"
	cancelFlag      = "cancel"
	resetStatusFlag = "reset-status"
	followFlag      = "follow"

	defaultPayloadURI = "http://127.0.0.1:8080/payload"

	envVarPrefix = "UC_"
)

var (
	logLevel   string
	logFile    string
	busAddress string

	doUpdate      bool
	doSuspend     bool
	doResume      bool
	doCancel      bool
	doResetStatus bool
	doFollow      bool
	payloadURI    string
	rawHeaders    string

	exitCode int

	rootCmd = &cobra.Command{
		Use:          "updatectl",
		Short:        "drive the system update service",
		Long:         "updatectl issues commands to the long-running update service and reports the outcome, including the result of an update it is asked to follow, as its exit code.",
		SilenceUsage: true,
		// Positional arguments are rejected by the dispatcher so that the
		// usage error shares the exit path of every other failure.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			SetFlagsFromEnvVars(cmd)
			cmd.SetOut(cmd.OutOrStdout())

			if err := util.InitLog(logLevel, logFile); err != nil {
				return fmt.Errorf("failed initializing log %v", err)
			}

			opts := internal.Options{
				Update:      doUpdate,
				Suspend:     doSuspend,
				Resume:      doResume,
				Cancel:      doCancel,
				ResetStatus: doResetStatus,
				Follow:      doFollow,
				PayloadURI:  payloadURI,
				Headers:     internal.SplitHeaders(rawHeaders),
			}

			client := internal.NewClient(opts, dialUpdateEngine)
			exitCode = client.Run(cmd.Context(), args)
			return nil
		},
	}
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	exitCode = 0
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "sets updatectl log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "console", "sets updatectl log path. If console is specified the log will be output to stderr")
	rootCmd.PersistentFlags().StringVar(&busAddress, "bus", "system", "bus carrying the update service: system, session or a raw D-Bus address")

	rootCmd.Flags().BoolVar(&doUpdate, updateFlag, false, "start a new update, if no update in progress")
	rootCmd.Flags().StringVar(&payloadURI, payloadFlag, defaultPayloadURI, "the URI to the update payload to use")
	rootCmd.Flags().StringVar(&rawHeaders, headersFlag, "", "a list of key-value pairs, one element of the list per line")
	rootCmd.Flags().BoolVar(&doSuspend, suspendFlag, false, "suspend an ongoing update and exit")
	rootCmd.Flags().BoolVar(&doResume, resumeFlag, false, "resume a suspended update")
	rootCmd.Flags().BoolVar(&doCancel, cancelFlag, false, "cancel the ongoing update and exit")
	rootCmd.Flags().BoolVar(&doResetStatus, resetStatusFlag, false, "reset a pending need-reboot status and exit")
	rootCmd.Flags().BoolVar(&doFollow, followFlag, false, "follow status update changes until a final state is reached. Exit status is 0 if the update succeeded, and 1 otherwise")

	rootCmd.AddCommand(versionCmd)
}

func dialUpdateEngine(queue updateengine.TaskQueue) (updateengine.Service, error) {
	client, err := updateengine.Dial(busAddress, queue)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SetFlagsFromEnvVars reads and updates flag values from environment
// variables with prefix UC_
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	setFlagsFromEnv(cmd.PersistentFlags())
	setFlagsFromEnv(cmd.Flags())
}

func setFlagsFromEnv(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		envVar := FlagNameToEnvVar(f.Name, envVarPrefix)

		if value, present := os.LookupEnv(envVar); present {
			err := flags.Set(f.Name, value)
			if err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, envVar, err)
			}
		}
	})
}

// FlagNameToEnvVar converts flag name to environment var name adding a prefix,
// replacing dashes and making all uppercase (e.g. reset-status is converted
// to UC_RESET_STATUS according to the input prefix)
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}
