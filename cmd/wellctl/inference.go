package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/wellness-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/logging"
)

func suggestTagsCmd() *cobra.Command {
	var description, category string

	cmd := &cobra.Command{
		Use:   "suggest-tags [title]",
		Short: "Print the tags a post would get without manual tags",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := domain.SuggestTags(strings.Join(args, " "), description, category)
			if tags == nil {
				tags = []string{}
			}

			return json.NewEncoder(cmd.OutOrStdout()).Encode(tags)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "post description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "post categories")

	return cmd
}

type classifyResult struct {
	Raw                 []string `json:"raw"`
	Categories          []string `json:"categories"`
	NutritionInterested bool     `json:"nutritionInterested"`
}

func classifyCmd(g *globals) *cobra.Command {
	var (
		status     string
		conditions []string
		goals      []string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Ask the configured classifier which categories fit a profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			classifier, err := acl.NewClassifierFromConfig(&cfg.Classifier, &cfg.Client, logger)
			if err != nil {
				return err
			}

			if classifier == nil {
				return errors.New("classifier is disabled; set classifier.enabled and classifier.api_key")
			}

			profile := &domain.HealthProfile{CurrentStatus: status, Conditions: conditions, Goals: goals}
			summary := profile.Summary()

			if summary.IsEmpty() {
				return errors.New("give at least one of --status, --condition or --goal")
			}

			ctx := logging.WithContext(cmd.Context(), logger)

			raw, err := classifier.Classify(ctx, summary)
			if err != nil {
				return fmt.Errorf("classifying: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(classifyResult{
				Raw:                 raw,
				Categories:          domain.FilterCategories(raw),
				NutritionInterested: domain.IsNutritionInterested(profile),
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "current health status")
	cmd.Flags().StringSliceVar(&conditions, "condition", nil, "health condition (repeatable)")
	cmd.Flags().StringSliceVar(&goals, "goal", nil, "health goal (repeatable)")

	return cmd
}
