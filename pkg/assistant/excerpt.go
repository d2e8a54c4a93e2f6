package assistant

// Excerpt is one retrieved course-material chunk, scored against the
// student's question. It lives only for the duration of a chat turn.
type Excerpt struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Source is the citation stored alongside an assistant message.
type Source struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// SourcesFromExcerpts maps the excerpts handed to the synthesizer into the
// citations persisted with the message. Citations reflect what was supplied,
// not what the model claims it read.
func SourcesFromExcerpts(excerpts []Excerpt) []Source {
	sources := make([]Source, 0, len(excerpts))
	for _, e := range excerpts {
		sources = append(sources, Source{Filename: e.Filename, ChunkIndex: e.ChunkIndex})
	}
	return sources
}
