package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/Bessima/botform-intake/internal/clients/intake"
	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/refcode"
	"github.com/Bessima/botform-intake/internal/validation"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		server   string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "intakectl",
		Short:         "Command line client for the bot customization intake API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("server") {
				if env := os.Getenv("INTAKE_SERVER"); env != "" {
					server = env
				}
			}
			return logger.Initialize(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&server, "server", defaultServer, "Intake API base URL (env INTAKE_SERVER)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	client := func() *intake.IntakeClient {
		return intake.NewIntakeClient(strings.TrimRight(server, "/"))
	}

	cmd.AddCommand(
		submitCmd(client),
		getCmd(client),
		listCmd(client),
		statusCmd(client),
		validateCmd(client),
		schemaCmd(client),
	)
	return cmd
}

func submitCmd(client func() *intake.IntakeClient) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a submission locally and send it to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			req, err := validation.New().Parse(body)
			if err != nil {
				return err
			}

			submission, err := client().Create(cmd.Context(), *req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), submission)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the submission, - for stdin")
	return cmd
}

func getCmd(client func() *intake.IntakeClient) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|reference-code>",
		Short: "Show one submission by numeric id or reference code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			if code := strings.ToUpper(strings.TrimSpace(args[0])); refcode.IsValid(code) {
				submission, err := c.GetByReference(cmd.Context(), code)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), submission)
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			submission, err := c.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), submission)
		},
	}
}

func listCmd(client func() *intake.IntakeClient) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions ordered by creation time",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			if email != "" {
				submissions, err := c.ListByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), submissions)
			}

			submissions, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), submissions)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Only submissions of this requester")
	return cmd
}

func statusCmd(client func() *intake.IntakeClient) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the processing status of a submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			submission, err := client().UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), submission)
		},
	}
}

func validateCmd(client func() *intake.IntakeClient) *cobra.Command {
	var (
		file   string
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a submission without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			if remote {
				err = client().Validate(cmd.Context(), body)
			} else {
				_, err = validation.New().Parse(body)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the submission, - for stdin")
	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the server instead of checking locally")
	return cmd
}

func schemaCmd(client func() *intake.IntakeClient) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the validation rules published by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := client().Schema(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), schema)
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid submission id %q", raw)
	}
	return id, nil
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(file)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printError(err error) {
	var validationErr *customerror.ValidationError
	if !errors.As(err, &validationErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	fields := make([]string, 0, len(validationErr.Fields))
	for field := range validationErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	fmt.Fprintln(os.Stderr, "Validation error:")
	for _, field := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, validationErr.Fields[field])
	}
}
