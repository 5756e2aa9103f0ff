package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?\n]+[.!?\n]+)`)

// Service splits record source text into token-bounded chunks along
// sentence boundaries, carrying a token overlap between neighbours.
// Chunk IDs derive from the record ID and the chunk's byte offset, so
// re-chunking an unchanged record yields identical IDs.
type Service struct {
	maxTokens     int
	overlapTokens int
	counter       interfaces.TokenCounter
	logger        arbor.ILogger
}

// span is a sentence (or sentence fragment) located in the source text
type span struct {
	start  int
	end    int
	tokens int
}

// NewService creates a chunker bounded by config
func NewService(config *common.ChunkingConfig, counter interfaces.TokenCounter, logger arbor.ILogger) interfaces.ChunkerService {
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	overlapTokens := config.OverlapTokens
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= maxTokens {
		overlapTokens = maxTokens / 4
	}
	return &Service{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
		counter:       counter,
		logger:        logger,
	}
}

// ChunkRecord splits the record's source text. Records whose text fits
// within the token bound produce a single chunk at offset zero.
func (s *Service) ChunkRecord(record *models.Record) []models.Chunk {
	text := record.SourceText
	spans := s.sentenceSpans(text)
	if len(spans) == 0 {
		return nil
	}

	var chunks []models.Chunk
	i := 0
	for i < len(spans) {
		j := i
		total := 0
		for j < len(spans) {
			if total > 0 && total+spans[j].tokens > s.maxTokens {
				break
			}
			total += spans[j].tokens
			j++
		}

		start := spans[i].start
		end := spans[j-1].end
		chunkText := text[start:end]
		chunks = append(chunks, models.Chunk{
			ChunkID:    models.ChunkID(record.ID, start),
			RecordID:   record.ID,
			Text:       chunkText,
			Offset:     start,
			Length:     end - start,
			TokenCount: s.counter.Count(chunkText),
		})

		if j == len(spans) {
			break
		}

		// Step back over trailing sentences to form the overlap, never
		// so far that the window stops advancing.
		back := j
		overlap := 0
		for back > i+1 && overlap < s.overlapTokens {
			back--
			overlap += spans[back].tokens
		}
		i = back
	}

	return chunks
}

// sentenceSpans locates sentences in text with their byte offsets and
// token counts. Sentences exceeding the chunk bound on their own are
// hard-split on whitespace.
func (s *Service) sentenceSpans(text string) []span {
	matches := sentencePattern.FindAllStringIndex(text, -1)

	var raw []span
	last := 0
	for _, m := range matches {
		raw = append(raw, span{start: m[0], end: m[1]})
		last = m[1]
	}
	// Trailing text without a sentence terminator still belongs to a chunk
	if strings.TrimSpace(text[last:]) != "" {
		raw = append(raw, span{start: last, end: len(text)})
	}

	var spans []span
	for _, sp := range raw {
		sp.start = skipSpace(text, sp.start, sp.end)
		if sp.start >= sp.end {
			continue
		}
		sp.tokens = s.counter.Count(text[sp.start:sp.end])
		if sp.tokens > s.maxTokens {
			spans = append(spans, s.splitOversized(text, sp)...)
			continue
		}
		spans = append(spans, sp)
	}
	return spans
}

// splitOversized breaks a single over-long sentence into word runs
// that each fit the token bound.
func (s *Service) splitOversized(text string, sp span) []span {
	words := wordSpans(text, sp.start, sp.end)
	if len(words) == 0 {
		return nil
	}

	var out []span
	i := 0
	for i < len(words) {
		j := i
		total := 0
		for j < len(words) {
			t := s.counter.Count(text[words[i].start:words[j].end])
			if total > 0 && t > s.maxTokens {
				break
			}
			total = t
			j++
		}
		out = append(out, span{start: words[i].start, end: words[j-1].end, tokens: total})
		i = j
	}
	return out
}

// wordSpans returns whitespace-delimited word offsets within [start,end)
func wordSpans(text string, start, end int) []span {
	var words []span
	inWord := false
	wordStart := start
	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(text[i:end])
		isSpace := unicode.IsSpace(r)
		if !inWord && !isSpace {
			inWord = true
			wordStart = i
		} else if inWord && isSpace {
			words = append(words, span{start: wordStart, end: i})
			inWord = false
		}
		i += size
	}
	if inWord {
		words = append(words, span{start: wordStart, end: end})
	}
	return words
}

func skipSpace(text string, start, end int) int {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	return start
}
