package client

import (
	"context"
	"sync"
)

// ChatMessage is one entry in a companion conversation.
type ChatMessage struct {
	Sender  string // "user" or "ai"
	Text    string
	IsError bool
}

var chatGreetings = map[string]string{
	"supportive":   "Hey there! I'm here to listen. What's on your mind today?",
	"sarcastic":    "Oh great, another human with feelings. Go ahead, I'm all ears.",
	"humorous":     "Welcome to the venting zone! Leave your worries at the door, or better yet, hand them to me.",
	"motivational": "You showed up, and that's already a win! Tell me what's going on.",
	"professional": "Good day. I'm ready to discuss whatever is concerning you.",
}

var chatFallbacks = map[string]string{
	"supportive":   "I'm having trouble connecting right now, but I'm still here for you. Try again in a moment.",
	"sarcastic":    "Great, even I'm broken now. Give it another shot in a bit.",
	"humorous":     "My brain took a coffee break. Ask me again in a minute!",
	"motivational": "Technical difficulties can't stop us! Try sending that again.",
	"professional": "I apologize, I could not process that. Please retry shortly.",
}

// ChatSession holds one ordered companion conversation.
type ChatSession struct {
	client *Client

	mu             sync.Mutex
	personality    string
	conversationID string
	messages       []ChatMessage
}

// NewChatSession starts a conversation with the given personality, opening
// with its greeting.
func NewChatSession(c *Client, personality string) *ChatSession {
	s := &ChatSession{client: c}
	s.SetPersonality(personality)
	return s
}

// Personality returns the active companion personality.
func (s *ChatSession) Personality() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.personality
}

// Messages returns a snapshot of the conversation in order.
func (s *ChatSession) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]ChatMessage, len(s.messages))
	copy(snapshot, s.messages)
	return snapshot
}

// SetPersonality switches the companion and resets the conversation to a
// single fresh greeting for the new personality.
func (s *ChatSession) SetPersonality(personality string) {
	greeting, ok := chatGreetings[personality]
	if !ok {
		personality = "supportive"
		greeting = chatGreetings[personality]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.personality = personality
	s.conversationID = ""
	s.messages = []ChatMessage{{Sender: "ai", Text: greeting}}
}

// Send appends the user's message and the companion's reply. When the
// backend is unreachable the reply is a personality-keyed fallback flagged
// as an error, so the conversation always progresses.
func (s *ChatSession) Send(ctx context.Context, text string) ChatMessage {
	s.mu.Lock()
	s.messages = append(s.messages, ChatMessage{Sender: "user", Text: text})
	personality := s.personality
	conversationID := s.conversationID
	s.mu.Unlock()

	reply, err := s.client.Chat(ctx, text, conversationID, personality)

	s.mu.Lock()
	defer s.mu.Unlock()

	var message ChatMessage
	if err != nil {
		message = ChatMessage{Sender: "ai", Text: chatFallbacks[personality], IsError: true}
	} else {
		message = ChatMessage{Sender: "ai", Text: reply.Response}
		s.conversationID = reply.ConversationID
	}
	s.messages = append(s.messages, message)
	return message
}
