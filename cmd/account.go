package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philocompass/compass/internal/quiz"
	"github.com/philocompass/compass/internal/result"
	"github.com/philocompass/compass/internal/screens/failure"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), d.cfg.RequestTimeout())
		defer cancel()

		msg, err := d.client.Hello(ctx)
		if err != nil {
			return fmt.Errorf("%s: %s", d.cfg.API.BaseURL, failure.Describe(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s, ok := d.sessions.Session()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", s.User.Username, s.User.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if !d.sessions.IsAuthenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err := d.sessions.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print your latest saved result",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if !d.sessions.IsAuthenticated() {
			return errors.New("sign in first: run compass and choose login")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*d.cfg.RequestTimeout())
		defer cancel()

		orch := result.New(d.client, d.sessions, d.logger.Named("result"))
		answers, derived, err := orch.FetchLatestSaved(ctx)
		if errors.Is(err, result.ErrNoSavedRecord) {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved result yet.")
			return nil
		}
		if err != nil {
			return errors.New(failure.Describe(err))
		}

		printResult(cmd.OutOrStdout(), answers, derived)
		return nil
	},
}

// printResult writes a plain-text rendition of a saved result.
func printResult(w io.Writer, answers quiz.Vector, d *result.Derived) {
	fmt.Fprintf(w, "Answer #%d  %s\n", d.AnswerID, d.Label.FullLabel)
	fmt.Fprintln(w, strings.Repeat("─", 40))

	for _, cat := range quiz.Categories {
		fmt.Fprintf(w, "%-12s %+d\n", cat, d.UserScore(cat))
	}

	vals := make([]string, len(answers))
	for i, v := range answers {
		vals[i] = fmt.Sprintf("%+d", v)
	}
	fmt.Fprintf(w, "Answers      %s\n", strings.Join(vals, " "))

	if p := d.Closest.Philosopher; p != nil {
		fmt.Fprintf(w, "Closest      %s (%s), distance %.2f\n", p.Name, p.Era, d.Closest.Distance)
	}
}
