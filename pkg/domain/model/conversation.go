package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aethon-lab/mnemosyne/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Chat message roles accepted at the boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one boundary-level chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string
	Answer   string
}

// Conversation holds the ordered turn history for one chat chain
// instance. It lives only as long as its holder; nothing is persisted.
// Append is serialized so a shared instance never interleaves turns.
type Conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// NewConversation creates a conversation pre-loaded with history.
func NewConversation(history []Turn) *Conversation {
	c := &Conversation{}
	if len(history) > 0 {
		c.turns = make([]Turn, len(history))
		copy(c.turns, history)
	}
	return c
}

// Append records a completed exchange.
func (c *Conversation) Append(question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Question: question, Answer: answer})
}

// Turns returns a copy of the ordered history.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Format serializes the history for prompt composition.
func (c *Conversation) Format() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, t := range c.turns {
		fmt.Fprintf(&sb, "Human: %s\nAssistant: %s\n", t.Question, t.Answer)
	}
	return sb.String()
}

// PairMessages derives the current question and completed history from
// an ordered message list. The last message must be from the user;
// preceding messages are paired as consecutive user/assistant turns
// and unpaired remainders are dropped.
func PairMessages(messages []Message) (string, []Turn, error) {
	if len(messages) == 0 {
		return "", nil, goerr.Wrap(types.ErrValidation, "chat requires at least one message")
	}
	last := messages[len(messages)-1]
	if last.Role != RoleUser {
		return "", nil, goerr.Wrap(types.ErrValidation, "last message must be from user",
			goerr.V("role", last.Role))
	}

	var history []Turn
	prior := messages[:len(messages)-1]
	for i := 0; i+1 < len(prior); i += 2 {
		if prior[i].Role == RoleUser && prior[i+1].Role == RoleAssistant {
			history = append(history, Turn{
				Question: prior[i].Content,
				Answer:   prior[i+1].Content,
			})
		}
	}

	return last.Content, history, nil
}
