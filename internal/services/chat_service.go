package services

import (
	"context"
	"regexp"
	"strings"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/models"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

const (
	chatPreamble = "You are an AI resource guide at Superfishal Intelligence, a platform that helps users discover free AI tools, get code examples, and find hosting options."

	// ChatApology replaces the reply whenever the model cannot be reached.
	ChatApology = "I'm sorry, I'm having trouble connecting to my AI brain at the moment. Please try again later or ask about our AI resources."

	DefaultChatHistoryLimit = 20
)

var assistantLabel = regexp.MustCompile(`(?i)^Assistant:\s*`)

// Completer turns a whole prompt into a continuation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ChatService struct {
	db           db.Store
	bot          Completer
	historyLimit int
	log          *logger.Logger
}

// ChatExchange is the result of posting a message. Reply is nil unless the
// posted message came from the user.
type ChatExchange struct {
	Message *models.ChatMessage
	Reply   *models.ChatMessage
}

// NewChatService builds the chat flow. bot may be nil, in which case every
// reply is ChatApology. historyLimit < 0 means the default.
func NewChatService(store db.Store, bot Completer, historyLimit int, log *logger.Logger) *ChatService {
	if log == nil {
		log = logger.Nop()
	}
	if historyLimit < 0 {
		historyLimit = DefaultChatHistoryLimit
	}
	return &ChatService{db: store, bot: bot, historyLimit: historyLimit, log: log.With("service", "ChatService")}
}

// History returns all messages when userID is nil, else that user's messages.
func (s *ChatService) History(ctx context.Context, userID *int) ([]models.ChatMessage, error) {
	return s.db.ListChatMessages(ctx, db.ChatFilter{UserID: userID})
}

// Post stores the message and, for user messages, stores a generated reply.
func (s *ChatService) Post(ctx context.Context, in *models.NewChatMessage) (*ChatExchange, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	msg := &models.ChatMessage{UserID: in.UserID, Content: in.Content, Role: in.Role}
	if err := s.db.CreateChatMessage(ctx, msg); err != nil {
		return nil, err
	}
	if msg.Role != models.RoleUser {
		return &ChatExchange{Message: msg}, nil
	}

	turns, err := s.conversation(ctx, msg)
	if err != nil {
		return nil, err
	}
	reply := &models.ChatMessage{UserID: in.UserID, Content: s.reply(ctx, turns), Role: models.RoleAssistant}
	if err := s.db.CreateChatMessage(ctx, reply); err != nil {
		return nil, err
	}
	return &ChatExchange{Message: msg, Reply: reply}, nil
}

// conversation collects the conversation the model sees: up to historyLimit prior
// turns of the same conversation, then the new message.
func (s *ChatService) conversation(ctx context.Context, msg *models.ChatMessage) ([]models.ChatMessage, error) {
	prior, err := s.db.ListChatMessages(ctx, db.ChatFilter{UserID: msg.UserID, Anonymous: msg.UserID == nil})
	if err != nil {
		return nil, err
	}
	turns := make([]models.ChatMessage, 0, len(prior)+1)
	for _, m := range prior {
		if m.ID != msg.ID {
			turns = append(turns, m)
		}
	}
	if len(turns) > s.historyLimit {
		turns = turns[len(turns)-s.historyLimit:]
	}
	return append(turns, *msg), nil
}

func (s *ChatService) reply(ctx context.Context, turns []models.ChatMessage) string {
	if s.bot == nil {
		return ChatApology
	}
	text, err := s.bot.Complete(ctx, chatPrompt(turns))
	if err != nil {
		s.log.Warn("chat completion failed", "error", err)
		return ChatApology
	}
	text = cleanReply(text)
	if text == "" {
		s.log.Warn("chat completion returned empty text")
		return ChatApology
	}
	return text
}

func chatPrompt(turns []models.ChatMessage) string {
	var sb strings.Builder
	sb.WriteString(chatPreamble)
	sb.WriteString("\n\n")
	for _, t := range turns {
		if t.Role == models.RoleUser {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}

func cleanReply(text string) string {
	return strings.TrimSpace(assistantLabel.ReplaceAllString(strings.TrimSpace(text), ""))
}
