package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xrasdas/sharelink/internal/convert"
)

func init() {
	var outputFormat string
	var asBase64 bool

	var convertCmd = &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert Xray configurations to share links",
		Long: `Reads an Xray client configuration (a single JSON object or an
array of them) from the given file, or stdin when no file is supplied,
and prints the resulting share links.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input []byte
			var err error
			if len(args) == 1 {
				input, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read input file: %w", err)
				}
			} else {
				input, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			result := convert.Convert(string(input))

			if asBase64 {
				fmt.Fprintln(cmd.OutOrStdout(), convert.Subscription(result.Links))
				for _, msg := range result.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				if len(result.Links) == 0 && len(result.Errors) > 0 {
					return fmt.Errorf("no configuration could be converted")
				}
				return nil
			}

			switch outputFormat {
			case "json":
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "yaml":
				data, err := yaml.Marshal(result)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			case "text", "":
				for _, link := range result.Links {
					fmt.Fprintln(cmd.OutOrStdout(), link)
				}
				for _, msg := range result.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
			default:
				return fmt.Errorf("unknown output format %q", outputFormat)
			}

			if len(result.Links) == 0 && len(result.Errors) > 0 {
				return fmt.Errorf("no configuration could be converted")
			}
			return nil
		},
	}
	convertCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
	convertCmd.Flags().BoolVar(&asBase64, "base64", false, "Print a base64 subscription payload instead")
	rootCmd.AddCommand(convertCmd)
}
