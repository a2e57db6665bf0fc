package utils

// Server-side strings for error titles and health checks. Question content
// is authored per assessment and never translated here.

// Locales the server answers in.
var Locales = []string{"en", "es"}

var translations = map[string]map[string]string{
	"en": {
		"health.ok":          "ok",
		"error.invalid":      "Invalid request",
		"error.not_found":    "Not found",
		"error.conflict":     "Conflict",
		"error.unauthorized": "Unauthorized",
		"error.persistence":  "Storage error",
		"error.internal":     "Internal error",
		"answer.none":        "No answer provided",
	},
	"es": {
		"health.ok":          "correcto",
		"error.invalid":      "Solicitud no válida",
		"error.not_found":    "No encontrado",
		"error.conflict":     "Conflicto",
		"error.unauthorized": "No autorizado",
		"error.persistence":  "Error de almacenamiento",
		"error.internal":     "Error interno",
		"answer.none":        "Sin respuesta",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}
