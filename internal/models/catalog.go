package models

import "slices"

const (
	PersonaDefault   = "Default"
	PersonaMedical   = "Medical Professional"
	PersonaFinancial = "Financial Consultant"
	PersonaLegal     = "Legal Advisor"
)

// Personas is the fixed set of behavioural profiles exposed to clients.
var Personas = []string{PersonaDefault, PersonaMedical, PersonaFinancial, PersonaLegal}

// EmbeddingModels lists embedding models the vector index can be built with.
// The document_chunks column is sized for these (1536 dimensions).
var EmbeddingModels = []string{"text-embedding-3-small"}

func IsPersona(name string) bool {
	return slices.Contains(Personas, name)
}

func IsEmbeddingModel(name string) bool {
	return slices.Contains(EmbeddingModels, name)
}
