package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popkit/internal/adapter/output"
	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/model"
)

var previewOpts struct {
	icon string
}

var previewCmd = &cobra.Command{
	Use:   "preview KIND [TITLE|MESSAGE] [TEXT]",
	Short: "Print the record an alert would present",
	Long: `Print the popup record built for KIND without presenting it. The
record carries every attribute a backend receives: width, class, timer,
buttons and colours.

KIND is one of: success, error, warning, info, confirmation, custom, loading.
Output defaults to YAML; use --format to change it.

Examples:
  popkit preview success "Saved"
  popkit preview confirmation "Delete?" "This cannot be undone" --format json`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOpts.icon, "icon", "i", "",
		"Icon for custom records (default: info)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	kind := model.Kind(args[0])
	if kind == "confirm" {
		kind = model.KindConfirmation
	}
	if !slices.Contains(model.Kinds, kind) {
		return fmt.Errorf("invalid kind %q, must be one of: %v", args[0], model.Kinds)
	}

	req := buildRequest(alert.PolicyFromConfig(cfg), kind, args[1:], model.Icon(previewOpts.icon))

	f, err := newFormatter(output.FormatYAML)
	if err != nil {
		return err
	}
	return output.Preview(os.Stdout, f, req)
}

// buildRequest builds the record the facade operation for kind would present.
func buildRequest(p alert.Policy, kind model.Kind, args []string, icon model.Icon) *model.Request {
	first, second := argOr(args, 0, ""), argOr(args, 1, "")

	switch kind {
	case model.KindConfirmation:
		return p.ConfirmRequest(first, second)
	case model.KindCustom:
		return p.CustomRequest(first, second, icon)
	case model.KindLoading:
		return p.LoadingRequest(first)
	default:
		return p.ToastRequest(kind, first)
	}
}
