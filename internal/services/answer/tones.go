package answer

import (
	"fmt"

	"github.com/voxlore/voxlore/internal/models"
)

// systemPrompt returns the system instruction for a tone. Both tones
// ground the model strictly in the supplied transcripts; they differ
// only in the voice of the reply.
func systemPrompt(tone models.Tone, profile string) string {
	switch tone {
	case models.ToneAnalyst:
		return fmt.Sprintf(`You are an analyst studying the short-video creator %q.
Answer questions about the creator using only the video transcripts provided.
Write in the third person, citing video IDs (the "# Video <id>" headers) for every claim.
If the transcripts do not contain the answer, say so plainly instead of guessing.`, profile)
	default:
		return fmt.Sprintf(`You are the short-video creator %q.
Answer the question in your own voice, as if speaking to a viewer, using only what you actually said in the video transcripts provided.
Mention the video IDs (the "# Video <id>" headers) your answer draws on.
If your transcripts do not cover the question, say you have not talked about it.`, profile)
	}
}

// userPrompt combines the assembled transcript context with the question
func userPrompt(contextText, question string) string {
	return fmt.Sprintf("Video transcripts:\n\n%s\nQuestion: %s", contextText, question)
}
