package extraction

// Result is the structured output produced for one source document. It
// is only ever built from a non-empty service response; there is no
// valid empty Result.
type Result struct {
	Markdown string   `json:"markdown"`
	Chunks   []Chunk  `json:"chunks"`
	Schema   Schema   `json:"extracted_schema"`
	Metadata Metadata `json:"extraction_metadata"`
}

type Chunk struct {
	Text      string      `json:"text"`
	ChunkType string      `json:"chunk_type"`
	ChunkID   string      `json:"chunk_id"`
	Grounding []Grounding `json:"grounding,omitempty"`
}

// Grounding anchors a chunk to its position in the source document.
type Grounding struct {
	Page int  `json:"page"`
	Box  *Box `json:"box,omitempty"`
}

// Box holds the four edge coordinates of a bounding box.
type Box struct {
	L float64 `json:"l"`
	T float64 `json:"t"`
	R float64 `json:"r"`
	B float64 `json:"b"`
}

type Schema struct {
	FileName string `json:"file_name"`
	FileSize int    `json:"file_size"`
}

type Metadata struct {
	Timestamp string `json:"timestamp"`
	Library   string `json:"library"`
}
