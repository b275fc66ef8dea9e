// Package prompt assembles the generation prompts. Every builder is a pure
// function of its inputs: identical arguments produce byte-identical output,
// which is what makes prompt-level regression tests possible.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// NewConversationSentinel is returned for empty histories so the prompt
// template never renders an empty section.
const NewConversationSentinel = "This is the start of a new conversation."

// NoKnowledgeSentinel stands in when retrieval produced nothing.
const NoKnowledgeSentinel = "No specific restaurant information available."

// languageDirectives maps supported language codes to the instruction embedded
// in the prompt. Unrecognized codes fall back to English.
var languageDirectives = map[string]string{
	"en": "Respond in English",
	"zh": "请用中文回答",
	"ja": "日本語で回答してください",
	"ko": "한국어로 답변해주세요",
}

// LanguageDirective returns the natural-language instruction for a language
// code. It never fails; unknown codes get the English directive.
func LanguageDirective(language string) string {
	if directive, ok := languageDirectives[language]; ok {
		return directive
	}

	return languageDirectives["en"]
}

// BuildConversationContext renders the most recent turns of a chronologically
// ordered history as a transcript, oldest of the window first. window bounds
// how many turns are included. Empty history yields NewConversationSentinel.
func BuildConversationContext(history []models.ChatTurn, window int) string {
	if len(history) == 0 {
		return NewConversationSentinel
	}

	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}

	parts := make([]string, 0, 2*len(history))
	for _, turn := range history {
		parts = append(parts, "User: "+turn.Query)
		parts = append(parts, "Assistant: "+turn.Response)
	}

	return strings.Join(parts, "\n")
}

// KnowledgeContext joins retrieved snippets into the knowledge section,
// substituting the sentinel when nothing was retrieved.
func KnowledgeContext(snippets []string) string {
	if len(snippets) == 0 {
		return NoKnowledgeSentinel
	}

	return strings.Join(snippets, "\n")
}

const chatTemplate = `You are a helpful assistant for a restaurant called "麵屋心" (Mian Wu Xin). You specialize in providing information about the restaurant's menu, services, hours, and general dining experience.

%s.

Restaurant Knowledge (USE THIS INFORMATION TO ANSWER):
%s

Conversation History:
%s

Current User Question: %s

Instructions:
- Be friendly, helpful, and professional
- Focus on restaurant-related topics
- ALWAYS use the Restaurant Knowledge provided above to answer questions
- If the Restaurant Knowledge contains relevant information, use it directly in your response
- Only suggest contacting the restaurant if the specific information is not in the Restaurant Knowledge
- Keep responses concise but informative
- STRICTLY follow the language instructions provided
- Maintain the conversational context from previous messages

Response:`

// BuildPrompt renders the generation prompt for a chat turn.
func BuildPrompt(query, language, knowledgeContext, conversationContext string) string {
	return fmt.Sprintf(chatTemplate,
		LanguageDirective(language),
		knowledgeContext,
		conversationContext,
		query,
	)
}
