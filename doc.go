/*
Package colloquio is a guided dialogue branching engine for structured,
multi-turn interviews in Italian.

The engine walks a fixed question set, classifies every answer for
evasiveness and emotional themes, and decides turn by turn whether to open a
bounded deepening sub-dialogue before moving on. After each main question it
produces a short bridge reply that links the answer to the next question.

# Architecture

The core is split hexagonally. Pure logic lives in pkg/classify (answer
classification) and pkg/templates (follow-up selection); pkg/ports declares
the collaborator contracts the engine depends on: an input capability, an
optional text generator, a context retriever, a session recorder and a state
store. Adapters under pkg/adapters provide file, memory and Redis stores, a
CSV transcript recorder, and an HTTP introspection server.

Every external capability is optional and every failure is recovered with a
deterministic fallback: a session never aborts because generation or
retrieval failed.

# Usage

	questions := []domain.Question{
		{Index: 0, Text: "Come è andata la sua giornata?"},
		{Index: 1, Text: "Come si è sentito oggi?"},
	}

	eng, err := colloquio.New(questions, input,
		colloquio.WithTemplates(reg),
		colloquio.WithGenerator(llm),
		colloquio.WithStore(memory.NewStore()),
	)
	if err != nil {
		log.Fatal(err)
	}

	state, err := eng.Run(context.Background())

Interrupted sessions can be continued with Resume when a state store is
configured.
*/
package colloquio
