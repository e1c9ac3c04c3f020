package content

import "folio-go/internal/model"

// defaultDocuments holds the compiled-in fallback content served by clients
// when no document has been written for a (page, language) pair yet.
// The store itself never persists these; a fresh install reads as NotFound
// until the first PUT or PATCH.
var defaultDocuments = map[string]map[string]model.ContentDocument{
	model.PageHome: {
		model.LangEnglish: {
			"title":    "Welcome",
			"subtitle": "Software engineer & maker",
		},
		model.LangFrench: {
			"title":    "Bienvenue",
			"subtitle": "Ingénieur logiciel & créateur",
		},
	},
	model.PageAbout: {
		model.LangEnglish: {
			"title": "About me",
			"bio":   "",
		},
		model.LangFrench: {
			"title": "À propos",
			"bio":   "",
		},
	},
	model.PageResume: {
		model.LangEnglish: {
			"title":           "Résumé",
			"jobs":            []any{},
			"skillCategories": []any{},
		},
		model.LangFrench: {
			"title":           "CV",
			"jobs":            []any{},
			"skillCategories": []any{},
		},
	},
	model.PageContactInfo: {
		model.LangEnglish: {
			"title": "Get in touch",
			"email": "",
		},
		model.LangFrench: {
			"title": "Contact",
			"email": "",
		},
	},
}

// DefaultDocument returns a deep copy of the compiled-in fallback content for
// a (page, language) pair, or an empty document for unknown pairs.
func DefaultDocument(page, language string) model.ContentDocument {
	langs, ok := defaultDocuments[page]
	if !ok {
		return model.ContentDocument{}
	}
	doc, ok := langs[language]
	if !ok {
		return model.ContentDocument{}
	}
	return copyDocument(doc)
}

func copyDocument(doc model.ContentDocument) model.ContentDocument {
	out := make(model.ContentDocument, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = copyValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = copyValue(child)
		}
		return out
	default:
		return v
	}
}
