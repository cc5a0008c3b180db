package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
)

const consoleHelp = `commands:
  /new            start a new conversation
  /list           list conversations
  /select N       open conversation N from the list
  /delete N       delete conversation N
  /clear          delete every conversation
  /search TEXT    find conversations by name or content
  /refresh        reload conversations from the server
  /quit           exit
anything else is sent as a message`

type ConsoleConfig struct {
	RevealInterval time.Duration
	TypingInterval time.Duration
}

// Console is a line-oriented front end for a Session.
type Console struct {
	session *Session
	out     io.Writer
	cfg     ConsoleConfig
}

func NewConsole(session *Session, out io.Writer, cfg ConsoleConfig) *Console {
	return &Console{
		session: session,
		out:     out,
		cfg:     cfg,
	}
}

func (c *Console) Run(ctx context.Context, in io.Reader) error {
	if err := c.session.Load(ctx); err != nil {
		return errors.Wrap(err, "failed to load conversations")
	}
	c.printf("%s\n", consoleHelp)
	c.printTranscript()

	scanner := bufio.NewScanner(in)
	for {
		c.printf("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := c.Handle(ctx, scanner.Text())
		if err != nil {
			c.printf("error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Handle executes one input line and reports whether the console should exit.
func (c *Console) Handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		return false, c.send(ctx, line)
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch command {
	case "/quit", "/exit":
		return true, nil
	case "/new":
		c.session.NewConversation()
		c.printf("new conversation\n")
	case "/list":
		c.printConversations(c.session.Conversations())
	case "/search":
		c.printConversations(c.session.Search(arg))
	case "/refresh":
		if err := c.session.Refresh(ctx); err != nil {
			return false, err
		}
		c.printConversations(c.session.Conversations())
	case "/select":
		conv, err := c.conversationAt(arg)
		if err != nil {
			return false, err
		}
		if err = c.session.SelectConversation(conv.ID); err != nil {
			return false, err
		}
		c.printTranscript()
	case "/delete":
		conv, err := c.conversationAt(arg)
		if err != nil {
			return false, err
		}
		if err = c.session.DeleteConversation(ctx, conv.ID); err != nil {
			return false, err
		}
		c.printf("deleted %q\n", conv.Name)
	case "/clear":
		if err := c.session.DeleteAllConversations(ctx); err != nil {
			return false, err
		}
		c.printf("all conversations deleted\n")
	default:
		c.printf("%s\n", consoleHelp)
	}
	return false, nil
}

// send shows a typing indicator while the turn is in flight, then reveals the reply.
func (c *Console) send(ctx context.Context, text string) error {
	var (
		resp    ContinueResponse
		sendErr error
	)
	done := make(chan struct{})
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer close(done)
			resp, sendErr = c.session.Send(ctx, text)
		},
	)
	wg.Go(
		func() {
			c.typing(done)
		},
	)
	wg.Wait()

	if sendErr != nil {
		if c.session.IsStale() {
			c.printf("the message was saved but got no reply, use /refresh to see it\n")
		}
		return sendErr
	}
	if len(resp.Chats) == 0 {
		return nil
	}
	last := resp.Chats[len(resp.Chats)-1]
	if last.Role != model.MessageRoleAssistant {
		return nil
	}

	c.printf("[%s] ", resp.ConversationName)
	var shown string
	for frame := range Reveal(ctx, last.Content, c.cfg.RevealInterval) {
		c.printf("%s", frame[len(shown):])
		shown = frame
	}
	c.printf("\n")
	return nil
}

func (c *Console) typing(done <-chan struct{}) {
	if c.cfg.TypingInterval <= 0 {
		<-done
		return
	}
	ticker := time.NewTicker(c.cfg.TypingInterval)
	defer ticker.Stop()
	var printed bool
	for {
		select {
		case <-done:
			if printed {
				c.printf("\n")
			}
			return
		case <-ticker.C:
			c.printf(".")
			printed = true
		}
	}
}

func (c *Console) conversationAt(arg string) (model.Conversation, error) {
	conversations := c.session.Conversations()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(conversations) {
		return model.Conversation{}, errors.Errorf("pick a number between 1 and %d", len(conversations))
	}
	return conversations[n-1], nil
}

func (c *Console) printConversations(conversations []model.Conversation) {
	if len(conversations) == 0 {
		c.printf("no conversations\n")
		return
	}
	active := c.session.ActiveConversationID()
	for i, conv := range conversations {
		marker := " "
		if conv.ID == active {
			marker = "*"
		}
		c.printf("%s%d. %s (%d messages)\n", marker, i+1, conv.Name, len(conv.Messages))
	}
}

func (c *Console) printTranscript() {
	for _, msg := range c.session.Transcript() {
		c.printf("%s: %s\n", msg.Role.Label(), msg.Content)
	}
}

func (c *Console) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}
