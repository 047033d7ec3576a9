package app

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Ilia01/jira-git-issue/internal/config"
	"github.com/Ilia01/jira-git-issue/internal/exit"
	"github.com/Ilia01/jira-git-issue/internal/utils"
)

const debugEnv = "JIRA_GIT_ISSUE_DEBUG"

var (
	rootCmd = &cobra.Command{
		Use:   "jira-git-issue [--register-secrets DOMAIN EMAIL API_KEY | --register-project DOMAIN | --view-git-issue]",
		Short: "Jira issue viewing utility with git branches",
		Long: "jira-git-issue prints the summary of the Jira issue named by the current\n" +
			"git branch (issue/jira/<KEY>), caching summaries per repository.",
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runRoot,
	}

	verbose bool

	registerSecretsDomain string
	registerProjectDomain string
	viewGitIssue          bool

	settings *config.Settings
	stdout   io.Writer = os.Stdout
	stderr   io.Writer = os.Stderr
	stdin    io.Reader = os.Stdin

	registerSecretsHandler = handleRegisterSecrets
	registerProjectHandler = handleRegisterProject
	viewIssueHandler       = handleViewIssue
	listSecretsHandler     = handleListSecrets
)

// Execute runs the command line. Any returned error carries an exit code
// retrievable with exit.CodeOf.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	var coded *exit.Error
	if errors.As(err, &coded) {
		return err
	}
	// Anything not produced by a handler is a flag or argument error
	// raised by cobra itself.
	return exit.NewError(err, exit.Usage())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	flags := rootCmd.Flags()
	flags.StringVar(&registerSecretsDomain, "register-secrets", "", "Register Jira domain, email, and API key (DOMAIN EMAIL API_KEY)")
	flags.StringVar(&registerProjectDomain, "register-project", "", "Register Jira domain for the current git project")
	flags.BoolVar(&viewGitIssue, "view-git-issue", false, "View the current Jira issue based on the current git branch name")
	rootCmd.MarkFlagsMutuallyExclusive("register-secrets", "register-project", "view-git-issue")

	rootCmd.AddCommand(registerSecretsCmd)
	rootCmd.AddCommand(registerProjectCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(secretsCmd)

	viewCmd.Flags().BoolVar(&viewOpen, "open", false, "Also open the issue in a browser")
}

func setup(cmd *cobra.Command, args []string) error {
	stdout = cmd.OutOrStdout()
	stderr = cmd.ErrOrStderr()
	stdin = cmd.InOrStdin()
	utils.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(stdout)

	logrus.SetOutput(stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(logrus.WarnLevel)
	if verbose || os.Getenv(debugEnv) != "" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	loaded, err := config.Load()
	if err != nil {
		return exit.NewError(err, exit.UnspecifiedError())
	}
	settings = loaded
	logrus.WithFields(logrus.Fields{
		"secrets":     settings.SecretsPath,
		"issues_file": settings.IssuesFile,
	}).Debug("settings loaded")
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func runRoot(cmd *cobra.Command, args []string) error {
	switch {
	case cmd.Flags().Changed("register-secrets"):
		if len(args) != 2 {
			return usageError(cmd, "--register-secrets requires DOMAIN EMAIL API_KEY")
		}
		return registerSecretsHandler(registerSecretsDomain, args[0], args[1])
	case cmd.Flags().Changed("register-project"):
		if len(args) != 0 {
			return usageError(cmd, "--register-project takes a single DOMAIN")
		}
		return registerProjectHandler(registerProjectDomain)
	case viewGitIssue:
		if len(args) != 0 {
			return usageError(cmd, "--view-git-issue takes no arguments")
		}
		return viewIssueHandler(false)
	default:
		fmt.Fprint(stderr, cmd.UsageString())
		return exit.NewError(errors.New("no action selected"), exit.Usage())
	}
}

func usageError(cmd *cobra.Command, msg string) error {
	return exit.NewError(
		errors.WithHint(errors.New(msg), "Run '"+cmd.CommandPath()+" --help' for usage."),
		exit.Usage())
}

var registerSecretsCmd = &cobra.Command{
	Use:   "register-secrets <domain> <email> [api-key]",
	Short: "Register Jira domain, email, and API key",
	Long:  "Register Jira domain, email, and API key. The key is prompted for when omitted.",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := ""
		if len(args) == 3 {
			apiKey = args[2]
		}
		return registerSecretsHandler(args[0], args[1], apiKey)
	},
}

var registerProjectCmd = &cobra.Command{
	Use:   "register-project <domain>",
	Short: "Register Jira domain for the current git project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return registerProjectHandler(args[0])
	},
}

var viewOpen bool

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the Jira issue for the current git branch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return viewIssueHandler(viewOpen)
	},
}

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "List registered Jira domains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSecretsHandler()
	},
}
