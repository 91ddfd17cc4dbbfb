package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/aurora/internal/chat"
	"github.com/guilhermegouw/aurora/internal/events"
	"github.com/guilhermegouw/aurora/internal/history"
	"github.com/guilhermegouw/aurora/internal/session"
	chatpage "github.com/guilhermegouw/aurora/internal/tui/page/chat"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [text...]",
		Short: "Run one turn and print the reply",
		Long: `Send one message through the same controller the TUI uses and print the
reply as it streams in.

Chat turns are saved like any other conversation; use --session to continue
a saved one. Image, code and presentation turns print their result and, with
--save, write the generated artifact to the data directory.`,
		Example: `  aurora ask "Explain goroutines in two sentences"
  aurora ask --image photo.png
  aurora ask --mode image "A lighthouse at dusk" --save`,
		RunE: runAsk,
	}

	cmd.Flags().StringP("mode", "m", "chat", "Mode: chat, image, code or slides")
	cmd.Flags().StringP("image", "i", "", "Attach an image file or URL")
	cmd.Flags().StringP("session", "s", "", "Continue the saved session with this ID")
	cmd.Flags().Bool("save", false, "Save a generated image or page to the data directory")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	flags := cmd.Flags()
	modeName, _ := flags.GetString("mode")     //nolint:errcheck // flag is registered above
	imageRef, _ := flags.GetString("image")    //nolint:errcheck // flag is registered above
	sessionID, _ := flags.GetString("session") //nolint:errcheck // flag is registered above
	save, _ := flags.GetBool("save")           //nolint:errcheck // flag is registered above

	mode, err := session.ParseMode(modeName)
	if err != nil {
		return err
	}

	var att *chat.Attachment
	if imageRef != "" {
		att, err = chat.LoadAttachment(imageRef)
		if err != nil {
			return fmt.Errorf("attaching image: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" && att == nil {
		return errors.New("nothing to send: pass some text or --image")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if sessionID != "" {
		if err := a.ctrl.SelectSession(resolveSessionID(a.ctrl.Sessions(), sessionID)); err != nil {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}
	}
	if att != nil {
		a.ctrl.Attach()
	} else if mode != session.ModeChat {
		a.ctrl.ToggleMode(mode)
	}

	ctx := contextOf(cmd)
	out := cmd.OutOrStdout()

	p := newReplyPrinter(out)
	p.follow(ctx, a)
	err = a.ctrl.Submit(ctx, text, att)
	failed := p.stop()
	if err != nil {
		return err
	}

	if failed != nil {
		if p.streamed {
			fmt.Fprintln(out)
		}
		return failed
	}

	state := a.ctrl.State()
	if !p.streamed {
		if reply, ok := lastReply(state.Messages); ok {
			fmt.Fprint(out, reply.Content)
		}
	}
	fmt.Fprintln(out)

	if state.Preview != nil {
		describePreview(cmd, state.Preview)
		if save {
			path, saveErr := chatpage.SaveArtifact(state.Preview, artifactDir(a.cfg.DataDir()))
			if saveErr != nil {
				return fmt.Errorf("saving artifact: %w", saveErr)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
		}
	}
	return nil
}

// replyPrinter writes streamed chunks as the chat broker delivers them.
type replyPrinter struct { //nolint:govet // fieldalignment: preserving logical field order
	out      io.Writer
	streamed bool
	err      error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newReplyPrinter(out io.Writer) *replyPrinter {
	return &replyPrinter{out: out}
}

// follow subscribes before the turn starts so no chunk is missed.
func (p *replyPrinter) follow(ctx context.Context, a *app) {
	ctx, p.cancel = context.WithCancel(ctx)
	ch := a.hub.Chat.Subscribe(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for ev := range ch {
			//nolint:exhaustive // only chunks and failures are printed
			switch ev.Payload.Type {
			case events.ChatEventTextDelta:
				p.streamed = true
				fmt.Fprint(p.out, ev.Payload.TextDelta)
			case events.ChatEventError:
				p.err = ev.Payload.Error
			}
		}
	}()
}

// stop ends the subscription and returns the turn's failure, if any.
func (p *replyPrinter) stop() error {
	p.cancel()
	p.wg.Wait()
	return p.err
}

func lastReply(msgs []history.Message) (history.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == history.RoleModel {
			return msgs[i], true
		}
	}
	return history.Message{}, false
}

func describePreview(cmd *cobra.Command, p *session.Preview) {
	w := cmd.ErrOrStderr()
	switch p.Kind {
	case session.PreviewImage:
		fmt.Fprintln(w, "Preview: generated image")
	case session.PreviewCode:
		fmt.Fprintf(w, "Preview: web page (%d bytes)\n", len(p.Code))
	case session.PreviewPresentation:
		fmt.Fprintf(w, "Preview: %s, %d slides\n", p.FileName, p.SlideCount)
	}
}
