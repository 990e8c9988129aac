package rag

import (
	"fmt"

	"github.com/nikhilbhutani/docchat/internal/models"
)

const defaultPersonaPrompt = "You are a helpful AI assistant. Use the following context to answer the user's question."

const expertPersonaPrompt = "You are a highly experienced %[1]s, with years of practical and theoretical expertise. " +
	"You have the accuracy, detail, and tone of a professional in that field. You are clear and factual and you do not speculate. " +
	"You are asked a question and provided with some context to answer it. " +
	"Answer only if the question and the provided context relate to your field as a %[1]s. " +
	"If it is outside your expertise, reply with a short request to rephrase the question within your field, " +
	"or to change the persona on the configuration page and try again."

// PersonaPrompt returns the system instruction for a persona. An empty name
// is the default persona.
func PersonaPrompt(persona string) string {
	if persona == "" || persona == models.PersonaDefault {
		return defaultPersonaPrompt
	}
	return fmt.Sprintf(expertPersonaPrompt, persona)
}
