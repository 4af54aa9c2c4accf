// cmd/match-cli/cmd/root.go
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"recruitment-workers/internal/common/logger"
	"recruitment-workers/internal/common/validation"
	"recruitment-workers/internal/matching"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const app = "match-cli"

var rootCmd = &cobra.Command{
	Use:          app,
	Short:        "match-cli scores candidate profiles against job requisitions offline",
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func newLogger() *zap.Logger {
	level, format := "warn", "console"
	if viper.GetBool("debug") {
		level = "debug"
	}
	if viper.GetBool("json") {
		format = "json"
	}
	return logger.NewWithOutput(level, format, "stderr")
}

// documents holds the raw candidate and requisition files named by flags.
type documents struct {
	candidate   []byte
	requisition []byte
}

func addDocumentFlags(c *cobra.Command) {
	c.Flags().StringP("candidate", "c", "", "path to the candidate profile JSON")
	c.Flags().StringP("requisition", "r", "", "path to the job requisition JSON")
	c.MarkFlagRequired("candidate")
	c.MarkFlagRequired("requisition")
}

func readDocuments(c *cobra.Command) (*documents, error) {
	candidatePath, _ := c.Flags().GetString("candidate")
	requisitionPath, _ := c.Flags().GetString("requisition")

	candidate, err := os.ReadFile(candidatePath)
	if err != nil {
		return nil, fmt.Errorf("reading candidate: %w", err)
	}
	requisition, err := os.ReadFile(requisitionPath)
	if err != nil {
		return nil, fmt.Errorf("reading requisition: %w", err)
	}
	return &documents{candidate: candidate, requisition: requisition}, nil
}

// validateDocuments runs both JSON Schemas and merges the results.
func validateDocuments(docs *documents) (*validation.ValidationResult, error) {
	candidate, err := validation.ValidateJSON(validation.DocumentCandidate, docs.candidate)
	if err != nil {
		return nil, err
	}
	requisition, err := validation.ValidateJSON(validation.DocumentRequisition, docs.requisition)
	if err != nil {
		return nil, err
	}
	return validation.Merge(candidate, requisition), nil
}

func decodeDocuments(docs *documents) (matching.CandidateProfile, matching.Requisition, error) {
	var (
		candidate   matching.CandidateProfile
		requisition matching.Requisition
	)
	if err := json.Unmarshal(docs.candidate, &candidate); err != nil {
		return candidate, requisition, fmt.Errorf("decoding candidate: %w", err)
	}
	if err := json.Unmarshal(docs.requisition, &requisition); err != nil {
		return candidate, requisition, fmt.Errorf("decoding requisition: %w", err)
	}
	return candidate, requisition, nil
}
