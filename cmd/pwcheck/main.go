// Command pwcheck checks a single password against the public password range
// API without sending the password or its full hash anywhere.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/term"

	appexposure "github.com/ahrav/breachcheck/internal/app/exposure"
	"github.com/ahrav/breachcheck/internal/domain/exposure"
	"github.com/ahrav/breachcheck/internal/infra/hibp"
	"github.com/ahrav/breachcheck/internal/infra/httpclient"
	"github.com/ahrav/breachcheck/pkg/common/logger"
	"github.com/ahrav/breachcheck/pkg/config"
)

// Exit codes.
const (
	exitSafe    = 0
	exitError   = 1
	exitExposed = 2
)

// errExposed is returned by the command when the password was found.
var errExposed = errors.New("password exposed")

type options struct {
	baseURL   string
	userAgent string
	padding   bool
	timeout   time.Duration
	verbose   bool
}

func main() {
	os.Exit(execute(newRootCmd(), os.Args[1:]))
}

// execute runs cmd and maps its outcome onto the process exit code.
func execute(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)

	err := cmd.Execute()
	switch {
	case err == nil:
		return exitSafe
	case errors.Is(err, errExposed):
		return exitExposed
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("error: %v", err))
		return exitError
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Default().Password
	opts := options{
		baseURL:   defaults.BaseURL,
		userAgent: defaults.UserAgent,
		padding:   defaults.AddPadding,
		timeout:   defaults.Timeout,
	}

	cmd := &cobra.Command{
		Use:   "pwcheck",
		Short: "Check whether a password appears in known breach corpora",
		Long: `Reads a password from the terminal without echo, or from stdin when piped,
and checks it with the k-anonymity range API. Only the first five characters of
the password's SHA-1 hash leave this machine.

Exit status is 0 when the password was not found, 2 when it was, 1 on error.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.baseURL, "base-url", opts.baseURL, "password range API base URL")
	flags.StringVar(&opts.userAgent, "user-agent", opts.userAgent, "User-Agent sent with the range query")
	flags.BoolVar(&opts.padding, "padding", opts.padding, "request padded range responses")
	flags.DurationVar(&opts.timeout, "timeout", opts.timeout, "deadline for the range query")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log the range query to stderr")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	secret, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	log := logger.Noop()
	if opts.verbose {
		log = logger.New(cmd.ErrOrStderr(), logger.LevelDebug, "pwcheck", nil)
	}
	tracer := noop.NewTracerProvider().Tracer("pwcheck")

	client := hibp.NewRangeClient(hibp.RangeConfig{
		BaseURL:    opts.baseURL,
		UserAgent:  opts.userAgent,
		AddPadding: opts.padding,
	}, httpclient.New(httpclient.Config{Timeout: opts.timeout}), tracer)

	checker := appexposure.NewPasswordExposureChecker(appexposure.Config{Timeout: opts.timeout}, client, log, tracer)

	verdict, err := checker.Check(cmd.Context(), secret)
	if err != nil {
		return err
	}

	printVerdict(cmd.OutOrStdout(), verdict)

	if verdict.IsExposed {
		return errExposed
	}
	return nil
}

// readSecret prompts for the password without echo when in is a terminal and
// otherwise reads the first line of in.
func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if err != nil && line == "" {
		return "", errors.New("no password provided on stdin")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

var riskColors = map[exposure.RiskLevel]*color.Color{
	exposure.RiskSafe:     color.New(color.FgGreen, color.Bold),
	exposure.RiskLow:      color.New(color.FgYellow),
	exposure.RiskMedium:   color.New(color.FgYellow, color.Bold),
	exposure.RiskHigh:     color.New(color.FgRed),
	exposure.RiskCritical: color.New(color.FgRed, color.Bold),
}

func printVerdict(w io.Writer, v exposure.Verdict) {
	c := riskColors[v.RiskLevel]

	if !v.IsExposed {
		c.Fprintln(w, "Not found in any known breach (risk: safe)")
		return
	}

	c.Fprintf(w, "Found %d times in known breaches (risk: %s)\n", v.ExposureCount, v.RiskLevel)
}
