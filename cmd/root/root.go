package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/oktatools/oktaws/internal/awsrole"
	"github.com/oktatools/oktaws/internal/config"
	"github.com/oktatools/oktaws/internal/credentials"
	"github.com/oktatools/oktaws/internal/oktaws"
	promptutils "github.com/oktatools/oktaws/utils/prompt"
)

type rootOptions struct {
	organizations string
	concurrent    bool
	verify        bool
	verbosity     int
	quiet         bool
}

// NewRootCmd builds the oktaws command. The optional positional
// argument is a glob pattern over profile names; the default updates
// every profile of every organization.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "oktaws [profiles]",
		Short:        "Update AWS credential profiles from Okta",
		Long:         `Logs in to Okta, fetches the AWS SAML assertion for each configured profile, assumes the matching role and writes the temporary credentials to the shared AWS credentials file.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			profilePattern := "*"
			if len(args) == 1 {
				profilePattern = args[0]
			}
			return run(cmd, profilePattern, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.organizations, "organizations", "o", "*", "Okta organizations to use (glob pattern)")
	cmd.Flags().BoolVarP(&opts.concurrent, "async", "a", false, "Resolve profiles within an organization concurrently")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "Verify new credentials with STS before saving")
	cmd.Flags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only report errors")

	return cmd
}

func run(cmd *cobra.Command, profilePattern string, opts *rootOptions) error {
	configureLogging(opts)

	fs := afero.NewOsFs()

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	store, err := credentials.NewStore(fs)
	if err != nil {
		return err
	}
	defer store.Close()

	stsClient, err := awsrole.NewSTSClient(cmd.Context())
	if err != nil {
		return err
	}

	runner := oktaws.NewRunner(cfg, store, stsClient, promptutils.NewPrompt())

	return runner.Run(cmd.Context(), oktaws.Options{
		ProfilePattern:      profilePattern,
		OrganizationPattern: opts.organizations,
		Concurrent:          opts.concurrent,
		Verify:              opts.verify,
	})
}

func configureLogging(opts *rootOptions) {
	switch {
	case opts.quiet:
		logrus.SetLevel(logrus.ErrorLevel)
	case opts.verbosity == 1:
		logrus.SetLevel(logrus.DebugLevel)
	case opts.verbosity > 1:
		logrus.SetLevel(logrus.TraceLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
