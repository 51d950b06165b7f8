package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const bareAnnotation = "bare"

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "classroom",
		Short: "Class status feed client",
		Long: `classroom reads and updates the class status feed from the terminal.
Changes appear locally at once and are rolled back if the server rejects them.`,
		Version:       fmt.Sprintf("%s (%s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[bareAnnotation] != "" {
				return nil
			}
			return a.open(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.config, "config", "c", "", "path to YAML config file")
	pf.BoolVar(&a.flags.json, "json", false, "print JSON instead of text")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&a.flags.metrics, "metrics", false, "print request and mutation counters to stderr")

	root.AddCommand(
		newVersionCmd(),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newFeedCmd(a),
		newPostCmd(a),
		newShowCmd(a),
		newRmCmd(a),
		newLikeCmd(a),
		newCommentCmd(a),
		newRmCommentCmd(a),
		newClassCmd(a),
		newThemeCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{bareAnnotation: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "classroom %s (%s)\n", version, buildDate)
		},
	}
}
