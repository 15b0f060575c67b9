// Marechan is an email-triggered AI assistant responder.
//
// It reads one raw RFC 5322 message on standard input (the mail
// delivery hook), or fetches one unseen message over IMAP with -fetch,
// asks a remote AI API to reply as the assistant named in the
// recipient address, sends the reply over SMTP, and posts a summary to
// an optional Discord webhook. Configuration is loaded from a single
// YAML file discovered automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	marechan < message       Process one raw message from stdin
//	marechan -fetch          Fetch one unseen message over IMAP instead
//	marechan -config <path>  Use an explicit config file
//	marechan -version        Print version and build information
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/douxx-tech/marechan/internal/buildinfo"
	"github.com/douxx-tech/marechan/internal/config"
	"github.com/douxx-tech/marechan/internal/enhance"
	"github.com/douxx-tech/marechan/internal/llm"
	"github.com/douxx-tech/marechan/internal/mailio"
	"github.com/douxx-tech/marechan/internal/notify"
	"github.com/douxx-tech/marechan/internal/session"
)

// errorReply is sent to the original sender when processing fails
// after the sender is known.
const errorReply = "Sorry, an error occurred while processing your email."

// main constructs the OS-level environment (context, stdio, argv) and
// delegates to [run]. Keeping os.Exit and os.Stdin out of the
// application logic lets tests drive the whole pipeline.
func main() {
	os.Exit(run(context.Background(), os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}

// run is the real entry point. It returns the process exit code:
// 1 for setup failures (flags, config, assistants, session), 0 for
// everything else. A processing failure after setup is not an exit
// error; the pipeline answers the sender with an apology instead.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) int {
	// Parse arguments by hand. The flag package relies on the
	// package-level flag.CommandLine, which makes it impossible to
	// call run() concurrently from tests, and the surface here is
	// three flags.
	var configPath string
	var fetchMode bool

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case args[i] == "-fetch":
			fetchMode = true
		case args[i] == "-version" || args[i] == "--version":
			fmt.Fprintln(stdout, buildinfo.String())
			return 0
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			printUsage(stdout)
			return 0
		default:
			fmt.Fprintf(stderr, "unknown flag: %s\n", args[i])
			printUsage(stderr)
			return 1
		}
	}

	cfgPath, err := config.FindConfig(configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", cfgPath, err)
		return 1
	}

	reg, err := config.LoadAssistants(cfg.AssistantsPath())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := reg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", cfg.AssistantsPath(), err)
		return 1
	}

	if fetchMode && !cfg.IMAP.Configured() {
		fmt.Fprintln(stderr, "-fetch requires imap host and username in the config")
		return 1
	}

	sess, err := session.Open(cfg.General)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer sess.Close()

	logger := sess.Logger()
	logger.Info("script started", "version", buildinfo.Version, "config", cfgPath)
	defer logger.Info("done")

	p := &pipeline{
		cfg:    cfg,
		reg:    reg,
		sess:   sess,
		logger: logger,
	}
	if err := p.process(ctx, stdin, fetchMode); err != nil {
		logger.Error("processing failed", "error", err)
		p.apologize(ctx)
	}
	return 0
}

// pipeline carries the state one run accumulates, so the error path
// can still reach the sender and assistant resolved before a failure.
type pipeline struct {
	cfg    *config.Config
	reg    config.Registry
	sess   *session.Session
	logger *slog.Logger

	in        *mailio.Inbound
	assistant *config.Assistant
}

// process handles one inbound email end to end.
func (p *pipeline) process(ctx context.Context, stdin io.Reader, fetchMode bool) error {
	var raw []byte
	var err error
	if fetchMode {
		raw, err = mailio.Fetch(ctx, p.cfg.IMAP, p.logger)
		if err != nil {
			return fmt.Errorf("fetch email: %w", err)
		}
		if raw == nil {
			return nil
		}
	} else {
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	p.logger.Info("email received", "bytes", len(raw))

	p.sess.LogRawEmail(raw)

	in, err := mailio.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse email: %w", err)
	}
	p.in = in

	if mailio.IsNoReply(in.Sender, p.reg) {
		p.logger.Info("sender is a no-reply address, no response will be sent", "sender", in.Sender)
		return nil
	}

	name := mailio.DetectAssistant(in.Recipient, p.reg, p.cfg.General.DefaultAssistant)
	assistant, ok := p.reg[name]
	if !ok {
		assistant = p.reg["default"]
		p.logger.Warn("assistant not found, using default", "assistant", name)
	}
	p.assistant = assistant
	p.logger.Info("assistant selected", "assistant", name, "sender", in.Sender)

	prompt := assistant.Prompt
	if assistant.EnhancePrompt {
		prompt = enhance.New(nil, p.logger).Enhance(ctx, prompt, assistant.Enhancements)
	}

	client := llm.New(p.cfg.API.URL, p.cfg.API.TimeoutSeconds, p.logger)
	response, err := client.Ask(ctx, prompt, in.Sender, in.Body)
	if err != nil {
		return fmt.Errorf("ask AI: %w", err)
	}

	if err := p.reply(ctx, assistant, response); err != nil {
		return err
	}

	p.notify(ctx, name, response)
	return nil
}

// reply composes and sends one response to the original sender using
// the assistant's mail settings.
func (p *pipeline) reply(ctx context.Context, a *config.Assistant, body string) error {
	msg, err := mailio.Compose(mailio.ComposeOptions{
		From:      a.Email.Sender,
		To:        p.in.Sender,
		Subject:   p.in.Subject,
		Body:      body,
		Signature: a.Signature,
	})
	if err != nil {
		return fmt.Errorf("compose reply: %w", err)
	}

	from := a.Email.Sender
	if from == "" {
		from = mailio.FallbackSender
	}
	if err := mailio.Send(ctx, a.Email, from, p.in.Sender, msg); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	p.logger.Info("reply sent", "to", p.in.Sender, "subject", p.in.Subject)
	return nil
}

// notify posts the run summary to Discord. Failures are logged only;
// the reply has already been sent.
func (p *pipeline) notify(ctx context.Context, assistantName, response string) {
	n := notify.New(p.cfg.Discord.WebhookURL, p.logger)
	err := n.Send(ctx, notify.Summary{
		Assistant:      assistantName,
		Sender:         p.in.Sender,
		Subject:        p.in.Subject,
		Response:       response,
		TranscriptPath: p.sess.TranscriptPath(),
		TranscriptName: p.sess.TranscriptName(),
	})
	if err != nil {
		p.logger.Error("discord notification failed", "error", err)
	}
}

// apologize answers the sender after a processing failure, when a
// sender is known at all. Failures here are only logged; there is
// nobody left to tell.
func (p *pipeline) apologize(ctx context.Context) {
	if p.in == nil || p.in.Sender == "" {
		return
	}

	assistant := p.assistant
	if assistant == nil {
		assistant = p.reg["default"]
	}

	if err := p.reply(ctx, assistant, errorReply); err != nil {
		p.logger.Error("error reply failed", "error", err)
		return
	}
	p.notify(ctx, "error", errorReply)
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Marechan - email-triggered AI assistant responder")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: marechan [flags] < raw-email")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>  Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -fetch          Fetch one unseen message over IMAP instead of reading stdin")
	fmt.Fprintln(w, "  -version        Print version and build information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/marechan/config.yaml, /etc/marechan/config.yaml")
}
