package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mstgnz/placetopay/invoice/asobancaria"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func billingCmd() *cobra.Command {
	return encodeCmd("billing", "Encode an Asobancaria billing file", func(in []byte, decode decoder) (string, error) {
		var file asobancaria.BillingFile
		if err := decode(in, &file); err != nil {
			return "", err
		}
		return asobancaria.BuildBillingFile(file)
	})
}

func collectionCmd() *cobra.Command {
	return encodeCmd("collection", "Encode an Asobancaria collection file", func(in []byte, decode decoder) (string, error) {
		var file asobancaria.CollectionFile
		if err := decode(in, &file); err != nil {
			return "", err
		}
		return asobancaria.BuildCollectionFile(file)
	})
}

type decoder func([]byte, any) error

func encodeCmd(use, short string, build func([]byte, decoder) (string, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   use + " [input]",
		Short: short,
		Long: short + ` from a YAML or JSON description.

The input is read from the given file or from stdin when it is "-".
Control records and totals are computed from the details.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			out, err := build(in, decoderFor(args[0]))
			if err != nil {
				return fmt.Errorf("%s file: %w", use, err)
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.WriteFile(output, []byte(out+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func decoderFor(path string) decoder {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return func(data []byte, out any) error {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("invalid json input: %w", err)
			}
			return nil
		}
	}
	return func(data []byte, out any) error {
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid yaml input: %w", err)
		}
		return nil
	}
}
