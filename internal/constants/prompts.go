package constants

// Prompt templates sent to the completion service. The placeholders are
// filled by the services layer; keeping the raw text here mirrors how the
// database-specific prompts are centralized for every provider.

// TableDetectionPrompt asks the model to pick exactly one table for a
// question given the full database structure.
const TableDetectionPrompt = `Pregunta del usuario: "%s"

Estructura de la base de datos:
%s

Analiza la pregunta y determina qué tabla es la más relevante basándote en:
1. Las palabras en la pregunta (cliente, producto, marca, etc.)
2. Los nombres de las columnas en cada tabla
3. El contexto de lo que se pregunta

Responde SOLO con el nombre exacto de UNA tabla de la lista, sin puntos, comillas ni explicaciones.

Nombre de la tabla:`

// QueryGenerationPrompt asks the model for exactly one MySQL statement.
// Placeholders: question, table context (tables + columns), sample context,
// rule list, column list.
const QueryGenerationPrompt = `Genera UNA consulta SQL para MySQL que responda esta pregunta: %s

%s
%s
REGLAS CRÍTICAS:
1. Escribe SOLO la consulta SQL, sin bloques markdown (sin ` + "```sql o ```" + `)
2. NUNCA uses columnas ID con valores de texto
3. Para buscar por nombre/texto, usa columnas que contengan 'nombre' en su nombre
4. Los IDs (id_*) son SIEMPRE numéricos
5. Usa LIKE '%%valor%%' para búsquedas de texto
6. Usa backticks (` + "`" + `) para nombres de tablas y columnas en MySQL
7. NO incluyas LIMIT, se agregará automáticamente
8. Revisa las columnas disponibles antes de usarlas
%s
Columnas disponibles: %s

Genera SOLO la consulta SQL:`

// QueryGenerationJoinRule is appended to the rule list when more than one
// table is in context.
const QueryGenerationJoinRule = "9. Puedes usar JOIN entre tablas a través de sus columnas id_*\n"

// ResponseGenerationPrompt turns a JSON result set into a short Spanish
// answer. Placeholders: question, JSON data, optional truncation rule.
const ResponseGenerationPrompt = `Eres un asistente de despensa amigable. Responde la pregunta del usuario basándote ÚNICAMENTE en los datos proporcionados.

Pregunta: %s
Datos de la base de datos: %s

REGLAS:
1. Responde de forma DIRECTA y NATURAL, como si fueras un humano conversando
2. NO digas cosas como "La respuesta que proporcionaste ya es correcta" o "Espero que esto te sea útil"
3. NO repitas la pregunta
4. Ve directo al grano con la información
5. Si hay números o listas, preséntelos de forma clara
6. Máximo 80 palabras
7. Sé específico con los datos, no inventes nada
%s
Ejemplos de BUENAS respuestas:
- "Hay 25 productos en total."
- "Encontré 3 productos de Pepsi: Pepsi Cola, Pepsi Light y Pepsi Zero."
- "Las categorías disponibles son: Bebidas, Snacks, Lácteos y Panadería."

Responde SOLO con la información, sin frases de relleno:`

// ResponseTruncationRule is injected into the response prompt when the
// result set was cut down to the first MaxResultRowsForLLM rows.
const ResponseTruncationRule = "8. IMPORTANTE: Menciona que solo se muestran los primeros 50 resultados de un total mayor\n"
