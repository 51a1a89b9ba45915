package commonModels

import (
	"encoding/json"
	"errors"
	"time"
)

type Document struct {
	Id                  string    `json:"source_doc_id" msgpack:"id"`
	Name                string    `json:"doc_name" msgpack:"name"`
	Source              string    `json:"source" msgpack:"source"` //file path or URL
	Content             string    `json:"-" msgpack:"-"`
	PageNum             int       `json:"page_num" msgpack:"page"`
	LastIngestTimestamp time.Time `json:"ingested_at" msgpack:"ingested_at"`
	ContentType         DocType   `json:"contentType" msgpack:"type"`
}

type DocChunk struct {
	Doc            Document          `msgpack:"doc"`
	ChunkId        string            `json:"chunk_id" msgpack:"chunk_id"`
	Chunk          string            `json:"content" msgpack:"content"`
	Reference      string            `json:"reference" msgpack:"reference"`
	PageNum        int               `json:"page_num" msgpack:"page"`
	ChunkPageOrder int               `json:"chunk_order" msgpack:"order"`
	Metadata       map[string]string `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
	Embedding      []float32         `json:"-" msgpack:"embedding"`
}

// MetadataWiderText is the chunk metadata key holding the surrounding text window.
const MetadataWiderText = "wider_text"

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var MD DocType = "MD"
var HTML DocType = "HTML"
var ERR DocType = "ERROR"

type CollectionDescriptor struct {
	Name        string `json:"name" msgpack:"name"`
	Description string `json:"description" msgpack:"description"`
	Dimension   int    `json:"dimension" msgpack:"dim"`
	Count       int    `json:"count" msgpack:"count"`
}

// PathList accepts either one string or a list of strings when decoded from
// JSON. A single string becomes a one element list.
type PathList []string

func (p *PathList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*p = PathList{}
			return nil
		}
		*p = PathList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("expected a string or a list of strings")
	}
	*p = many
	return nil
}
