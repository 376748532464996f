package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/model"
)

// Exit statuses for dialogs.
const (
	exitConfirmed = 0
	exitCancelled = 1
	exitDismissed = 2
)

var confirmOpts struct {
	confirmLabel string
	cancelLabel  string
	print        bool
}

var customOpts struct {
	icon  string
	print bool
}

var loadingOpts struct {
	hold   time.Duration
	detach bool
}

func init() {
	for _, kind := range []model.Kind{model.KindSuccess, model.KindError, model.KindWarning, model.KindInfo} {
		rootCmd.AddCommand(newToastCmd(kind))
	}

	rootCmd.AddCommand(confirmCmd, customCmd, loadingCmd, closeCmd)

	confirmCmd.Flags().StringVar(&confirmOpts.confirmLabel, "confirm-label", "",
		"Confirm button label (default: Yes)")
	confirmCmd.Flags().StringVar(&confirmOpts.cancelLabel, "cancel-label", "",
		"Cancel button label (default: No)")
	confirmCmd.Flags().BoolVarP(&confirmOpts.print, "print", "p", false,
		"Print the outcome to stdout")

	customCmd.Flags().StringVarP(&customOpts.icon, "icon", "i", string(model.IconInfo),
		"Icon (success, error, warning, info, question, or an icon name)")
	customCmd.Flags().BoolVarP(&customOpts.print, "print", "p", false,
		"Print the outcome to stdout")

	loadingCmd.Flags().DurationVar(&loadingOpts.hold, "hold", 0,
		"Keep the indicator up for this long, then close it (0 = until interrupted)")
	loadingCmd.Flags().BoolVar(&loadingOpts.detach, "detach", false,
		"Print the notification ID and exit, leaving the indicator up (dbus backend)")
}

func newToastCmd(kind model.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + " MESSAGE...",
		Short: fmt.Sprintf("Show a %s toast", kind),
		Long: fmt.Sprintf(`Show a %s toast. The toast closes by itself after the configured
timer (3 seconds by default).`, kind),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToast(kind, strings.Join(args, " "))
		},
	}
}

func runToast(kind model.Kind, message string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	switch kind {
	case model.KindSuccess:
		err = s.facade.ShowSuccess(ctx, message)
	case model.KindError:
		err = s.facade.ShowError(ctx, message)
	case model.KindWarning:
		err = s.facade.ShowWarning(ctx, message)
	default:
		err = s.facade.ShowInfo(ctx, message)
	}
	if err != nil {
		return err
	}
	return ignoreCancel(s.Wait(ctx))
}

var confirmCmd = &cobra.Command{
	Use:   "confirm TITLE [TEXT]",
	Short: "Ask a yes/no question",
	Long: `Show a confirmation dialog and wait for the answer.

Exit status is 0 when confirmed, 1 when cancelled and 2 when the dialog
was dismissed any other way.

Examples:
  popkit confirm "Delete branch?" "This cannot be undone" && git branch -D old
  popkit confirm "Reboot now?" --confirm-label Reboot --cancel-label Later`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfirm,
}

func runConfirm(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	var opts []alert.ConfirmOption
	if confirmOpts.confirmLabel != "" {
		opts = append(opts, alert.WithConfirmLabel(confirmOpts.confirmLabel))
	}
	if confirmOpts.cancelLabel != "" {
		opts = append(opts, alert.WithCancelLabel(confirmOpts.cancelLabel))
	}

	d, err := s.facade.ShowConfirm(ctx, args[0], argOr(args, 1, ""), opts...)
	if err != nil {
		return err
	}
	return finish(ctx, s, d, confirmOpts.print)
}

var customCmd = &cobra.Command{
	Use:   "custom TITLE [TEXT]",
	Short: "Show an alert with a custom icon",
	Long: `Show a modal alert and wait until it is dismissed.

Exit status follows confirm: 0 when the OK button is pressed, 2 otherwise.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCustom,
}

func runCustom(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.facade.ShowCustomAlert(ctx, args[0], argOr(args, 1, ""), model.Icon(customOpts.icon))
	if err != nil {
		return err
	}
	return finish(ctx, s, d, customOpts.print)
}

var loadingCmd = &cobra.Command{
	Use:   "loading [TITLE]",
	Short: "Show a loading indicator",
	Long: `Show a loading indicator that the user cannot dismiss.

With --hold the indicator is closed once the duration passes. Without it,
popkit keeps the indicator up until interrupted. With the dbus backend and
--hold 0 --detach, the notification ID is printed and popkit exits; pass
the ID to "popkit close" to remove it later.

Examples:
  popkit loading "Syncing..." --hold 10s
  id=$(popkit loading "Building..." --detach); make; popkit close "$id"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoading,
}

func runLoading(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.facade.ShowLoading(ctx, argOr(args, 0, "")); err != nil {
		return err
	}

	if loadingOpts.detach {
		if s.client == nil {
			return fmt.Errorf("--detach needs the dbus backend")
		}
		fmt.Println(s.client.CurrentID())
		return nil
	}

	if loadingOpts.hold > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, loadingOpts.hold)
		defer cancel()
	}
	<-ctx.Done()

	// The signal context is done; close with a fresh one.
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.facade.CloseAlert(closeCtx)
}

var closeCmd = &cobra.Command{
	Use:   "close [ID]",
	Short: "Close the open alert",
	Long: `Close the alert on screen. With the dbus backend popkitd reports
which popup is showing, so alerts raised by other popkit processes are
closed too. Other notification servers cannot tell; pass the ID printed by
"popkit loading --detach" to close a specific notification.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClose,
}

func runClose(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if len(args) == 0 {
		return s.facade.CloseAlert(ctx)
	}
	if s.client == nil {
		return fmt.Errorf("closing by ID needs the dbus backend")
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid notification ID %q", args[0])
	}
	return s.client.CloseID(ctx, uint32(id))
}

// finish waits for a dialog result and converts it to an exit status.
func finish(ctx context.Context, s *session, d *model.Deferred, printResult bool) error {
	outcome, err := d.Wait(ctx)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := s.facade.CloseAlert(closeCtx); cerr != nil {
			logger.Debug("failed to close alert", "error", cerr)
		}
		return &exitError{code: exitDismissed}
	}
	_ = s.Wait(ctx)

	logger.Debug("alert resolved", "request_id", d.ID(), "choice", outcome.Choice, "reason", outcome.Reason)
	if printResult {
		fmt.Println(formatOutcome(outcome))
	}

	if code := exitCode(outcome); code != exitConfirmed {
		return &exitError{code: code}
	}
	return nil
}

func exitCode(o model.Outcome) int {
	switch o.Choice {
	case model.ChoiceConfirmed:
		return exitConfirmed
	case model.ChoiceCancelled:
		return exitCancelled
	default:
		return exitDismissed
	}
}

func formatOutcome(o model.Outcome) string {
	if o.Reason == model.DismissReasonNone || o.Choice == model.ChoiceCancelled {
		return string(o.Choice)
	}
	return string(o.Choice) + " (" + string(o.Reason) + ")"
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}
