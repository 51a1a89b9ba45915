package embedding

import "strings"

// Kind is the closed set of embedding backends. It is resolved once from the
// model identifier and never changes for the life of an adapter.
type Kind int

const (
	KindDefault Kind = iota
	KindGemini
	KindOpenAI
	KindJina
	KindSentenceTransformer
	KindBGEM3
)

const (
	ModelDefault      = "default"
	ModelDefaultAlias = "GPTCache/paraphrase-albert-onnx"
	ModelBGEM3        = "bge-m3"
	BGEM3RegistryName = "BAAI/bge-m3"

	PrefixJina   = "jina-"
	PrefixBAAI   = "BAAI/"
	PrefixOpenAI = "text-embedding-"
	PrefixGemini = "gemini-"
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindGemini:
		return "gemini"
	case KindOpenAI:
		return "openai"
	case KindJina:
		return "jina"
	case KindSentenceTransformer:
		return "sentence-transformer"
	case KindBGEM3:
		return "bge-m3"
	}
	return "unknown"
}

// Resolve maps a model identifier to its backend kind and the model name the
// backend should load. modelName replaces an empty or "default" identifier.
//
// Precedence: default aliases, then family prefixes, then the exact "bge-m3"
// identifier. Anything else is an UnsupportedModelError.
func Resolve(model, modelName string) (Kind, string, error) {
	if (model == "" || model == ModelDefault) && modelName != "" {
		model = modelName
	}

	switch {
	case model == "" || model == ModelDefault:
		return KindDefault, ModelDefault, nil
	case model == ModelDefaultAlias:
		return KindDefault, model, nil
	case strings.HasPrefix(model, PrefixJina):
		return KindJina, model, nil
	case strings.HasPrefix(model, PrefixBAAI):
		return KindSentenceTransformer, model, nil
	case strings.HasPrefix(model, PrefixOpenAI):
		return KindOpenAI, model, nil
	case strings.HasPrefix(model, PrefixGemini):
		return KindGemini, model, nil
	case model == ModelBGEM3:
		return KindBGEM3, BGEM3RegistryName, nil
	}
	return 0, "", &UnsupportedModelError{Model: model}
}

var knownDimensions = map[string]int{
	"BAAI/bge-large-en-v1.5":      1024,
	"BAAI/bge-base-en-v1.5":       768,
	"BAAI/bge-small-en-v1.5":      384,
	"BAAI/bge-large-zh-v1.5":      1024,
	"BAAI/bge-base-zh-v1.5":       768,
	"BAAI/bge-small-zh-v1.5":      384,
	ModelDefaultAlias:             768,
	ModelDefault:                  768,
	"jina-embeddings-v3":          1024,
	"jina-embeddings-v2-base-en":  768,
	"jina-embeddings-v2-small-en": 512,
	BGEM3RegistryName:             1024,
	"text-embedding-3-small":      1536,
	"text-embedding-3-large":      3072,
	"text-embedding-ada-002":      1536,
	"gemini-embedding-001":        3072,
}

func KnownDimension(model string) (int, bool) {
	d, ok := knownDimensions[model]
	return d, ok
}

// ResolveDimension picks the explicit dimension when given, otherwise the
// table value. A model outside the table needs an explicit dimension.
func ResolveDimension(model string, explicit int) (int, error) {
	if explicit > 0 {
		return explicit, nil
	}
	if d, ok := KnownDimension(model); ok {
		return d, nil
	}
	return 0, NewConfigurationError(model, "unknown output dimension, set it with WithDimension")
}

// SupportedModels lists the identifiers with a known dimension.
func SupportedModels() map[string]int {
	out := make(map[string]int, len(knownDimensions)+1)
	for k, v := range knownDimensions {
		out[k] = v
	}
	out[ModelBGEM3] = knownDimensions[BGEM3RegistryName]
	return out
}
