package unscraper

// DefaultChunkSize is the maximum chunk length in characters.
const DefaultChunkSize = 10000

// Chunk is a bounded slice of harvested text submitted to the model in one
// call.
type Chunk struct {
	Index int
	Text  string
}

// SplitText partitions text into consecutive, non-overlapping chunks of at
// most size characters. The last chunk may be shorter. Empty text yields no
// chunks and a non-positive size means DefaultChunkSize.
func SplitText(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
		})
	}
	return chunks
}
