package chunker

import "strings"

// Config controls chunking behavior.
type Config struct {
	ChunkSize int // Words per chunk.
	Overlap   int // Words shared between consecutive chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Chunk is a contiguous word-count window of source text. StartWord and
// EndWord are offsets into the whitespace-split word sequence of the
// source, with EndWord exclusive.
type Chunk struct {
	Index     int    `json:"index"`
	StartWord int    `json:"start_word"`
	EndWord   int    `json:"end_word"`
	Text      string `json:"text"`
}

// WordCount returns the number of words in the chunk.
func (c Chunk) WordCount() int {
	return c.EndWord - c.StartWord
}

// Split breaks text into overlapping word-count windows. The window
// slides forward by ChunkSize-Overlap words each step until its end
// reaches the last word, so the final chunk may be shorter. An overlap
// at or above the chunk size is clamped to a quarter of the chunk size
// rather than rejected.
func Split(text string, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = cfg.ChunkSize / 4
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= cfg.ChunkSize {
		return []Chunk{{
			Index:     0,
			StartWord: 0,
			EndWord:   len(words),
			Text:      text,
		}}
	}

	step := cfg.ChunkSize - cfg.Overlap
	var chunks []Chunk
	for start := 0; start < len(words); start += step {
		end := start + cfg.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			StartWord: start,
			EndWord:   end,
			Text:      strings.Join(words[start:end], " "),
		})
		if end >= len(words) {
			break
		}
	}
	return chunks
}

// Stats summarizes a chunk list.
type Stats struct {
	TotalChunks      int `json:"total_chunks"`
	TotalWords       int `json:"total_words"`
	AvgWordsPerChunk int `json:"avg_words_per_chunk"`
}

// Info computes aggregate statistics for a chunk list.
func Info(chunks []Chunk) Stats {
	if len(chunks) == 0 {
		return Stats{}
	}
	total := 0
	for _, c := range chunks {
		total += c.WordCount()
	}
	return Stats{
		TotalChunks:      len(chunks),
		TotalWords:       total,
		AvgWordsPerChunk: total / len(chunks),
	}
}
