package constants

// Fixed user-facing messages. The bot answers in Spanish, matching the
// despensa domain it serves.
const (
	// QueryRefusalMessage is returned when a generated statement trips the
	// SQL safety gate. It is a payload, never an exception.
	QueryRefusalMessage = "Disculpa, no tengo permisos para hacer eso."

	// NoResultsMessage is returned when a query executes fine but matches nothing.
	NoResultsMessage = "No encontré resultados para tu consulta. ¿Quieres que busque algo diferente?"

	// ErrorAnswerTemplate wraps an execution error into an apology.
	ErrorAnswerTemplate = "Lo siento, hubo un error: %s"

	// ProcessErrorTemplate is the top-level pipeline error marker.
	ProcessErrorTemplate = "Error procesando tu pregunta: %s"

	// FallbackCountSingular / FallbackCountPlural are the deterministic
	// composer fallbacks when the LLM call fails.
	FallbackCountSingular = "Encontré %d resultado."
	FallbackCountPlural   = "Encontré %d resultados."
)

// UnwantedPhrases are boilerplate fragments some models append to answers;
// the composer strips them from every reply.
var UnwantedPhrases = []string{
	"La respuesta que proporcionaste ya es correcta.",
	"¡Espero que esto te sea útil!",
	"Espero que esto te ayude.",
	"¿Hay algo más en lo que pueda ayudarte?",
}
