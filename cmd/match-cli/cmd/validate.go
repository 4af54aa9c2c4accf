// cmd/match-cli/cmd/validate.go
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate candidate and requisition documents against the JSON Schemas",
	RunE: func(c *cobra.Command, _ []string) error {
		return runValidate(c, c.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	addDocumentFlags(validateCmd)
}

func runValidate(c *cobra.Command, out io.Writer) error {
	docs, err := readDocuments(c)
	if err != nil {
		return err
	}

	result, err := validateDocuments(docs)
	if err != nil {
		return err
	}

	if result.Valid {
		fmt.Fprintln(out, "documents are valid")
		return nil
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "%s: %s (%s)\n", e.Field, e.Message, e.Code)
	}
	return fmt.Errorf("%d validation error(s)", len(result.Errors))
}
