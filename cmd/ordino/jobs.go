package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ternarybob/ordino/internal/app"
	"github.com/ternarybob/ordino/internal/common"
	"github.com/ternarybob/ordino/internal/models"
	"github.com/ternarybob/ordino/internal/plugins"
	"github.com/ternarybob/ordino/internal/services/loader"
	"github.com/ternarybob/ordino/internal/services/preview"
	"github.com/ternarybob/ordino/internal/services/scaffold"
	"github.com/ternarybob/ordino/internal/services/validation"
)

var (
	runJobIDs    []string
	initTemplate string
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Run, validate, and inspect job documents",
}

var jobsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the job document to completion",
	RunE:  runJobs,
}

var jobsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the job document without running it",
	RunE:  validateJobs,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the jobs and hooks of the document",
	RunE:  listJobs,
}

var jobsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter job document",
	RunE:  initJobs,
}

func init() {
	jobsRunCmd.Flags().StringSliceVar(&runJobIDs, "job", nil,
		"Run only the named job (repeatable); runs even when disabled")
	jobsInitCmd.Flags().StringVar(&initTemplate, "template", "",
		"Template name (hello, pipeline, cron, container); prompts when omitted")

	jobsCmd.AddCommand(jobsRunCmd)
	jobsCmd.AddCommand(jobsValidateCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsInitCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	common.PrintBanner(common.GetVersion())

	if err := ensureDocument(); err != nil {
		return err
	}

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	runErr := application.Scheduler.Start(runJobIDs...)

	executed := application.Manager.Executed()
	fmt.Print(preview.ResultsTable(executed))

	if runErr != nil {
		if errors.Is(runErr, models.ErrJobKill) {
			return fmt.Errorf("run terminated by kill signal: %w", runErr)
		}
		return runErr
	}

	failed := 0
	for _, job := range executed {
		if job.Result.Status == models.JobStatusError {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d job(s) ended in ERROR", failed)
	}

	return nil
}

func validateJobs(cmd *cobra.Command, args []string) error {
	doc, err := loader.NewService(logger).Load(config.Document.Path)
	if err != nil {
		return err
	}

	registry, err := buildCatalog()
	if err != nil {
		return err
	}
	for _, job := range doc.Jobs {
		if !strings.HasPrefix(job.Plugin, plugins.FileSpecPrefix) {
			continue
		}
		if loadErr := registry.RegisterExternal(job.Plugin); loadErr != nil {
			logger.Warn().
				Err(loadErr).
				Str("job_id", job.ID).
				Msg("Failed to load external plugin")
		}
	}

	validator := validation.NewService(registry, logger)
	report := validation.NewReport()

	schemaErr := validator.ValidateSchema(doc)
	jobsErr := validator.ValidateJobs(doc.Jobs, report)
	hooksErr := validator.ValidateHooks(doc.Hooks, doc.Jobs, report)

	// The report prints even when a stage failed so every finding is
	// visible in one pass.
	fmt.Print(report.String())

	for _, stageErr := range []error{schemaErr, jobsErr, hooksErr} {
		if stageErr != nil {
			return stageErr
		}
	}

	fmt.Printf("Document %s is valid.\n", config.Document.Path)
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	if err := ensureDocument(); err != nil {
		return err
	}

	doc, err := loader.NewService(logger).Load(config.Document.Path)
	if err != nil {
		return err
	}

	fmt.Print(preview.JobTree(doc))
	return nil
}

func initJobs(cmd *cobra.Command, args []string) error {
	scaffolder := scaffold.NewService(logger)

	name := initTemplate
	if name == "" {
		var err error
		name, err = scaffolder.Prompt(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
	}

	return scaffolder.Write(config.Document.Path, name)
}

// ensureDocument offers the template catalog when the configured job
// document does not exist yet.
func ensureDocument() error {
	if _, err := os.Stat(config.Document.Path); err == nil {
		return nil
	}

	fmt.Printf("Job document %s not found.\n", config.Document.Path)

	scaffolder := scaffold.NewService(logger)
	name, err := scaffolder.Prompt(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("no job document at %s", config.Document.Path)
	}

	return scaffolder.Write(config.Document.Path, name)
}
