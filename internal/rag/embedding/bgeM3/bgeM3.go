package bgeM3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/customHttpClient"
	"github.com/niexiaoning/deep-searcher/internal/rag/embedding"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
)

// Client calls a BGE-M3 encode service. The model is fixed; apart from the
// service endpoint no keyword configuration reaches it.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *logger_i.Logger
}

type encodeRequest struct {
	Texts             []string `json:"texts"`
	IsQuery           bool     `json:"is_query"`
	ReturnDense       bool     `json:"return_dense"`
	ReturnSparse      bool     `json:"return_sparse"`
	ReturnColbertVecs bool     `json:"return_colbert_vecs"`
}

type encodeResponse struct {
	DenseVecs      [][]float64          `json:"dense_vecs"`
	LexicalWeights []map[string]float64 `json:"lexical_weights"`
	ColbertVecs    [][][]float64        `json:"colbert_vecs"`
}

func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = config.BGEM3BaseURL
	}
	if httpClient == nil {
		httpClient = customHttpClient.NewPooledClient(config.EmbeddingConnectionTimeout)
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger_i.NewLogger("bge_m3"),
	}
}

func (c *Client) Dimension() int {
	d, _ := embedding.KnownDimension(embedding.BGEM3RegistryName)
	return d
}

// Embed returns the dense vectors only.
func (c *Client) Embed(ctx context.Context, texts []string, purpose embedding.Purpose) (embedding.Embeddings, error) {
	res, err := c.call(ctx, encodeRequest{Texts: texts, IsQuery: purpose == embedding.PurposeQuery, ReturnDense: true})
	if err != nil {
		return embedding.Embeddings{}, err
	}
	if err := embedding.CheckLength(embedding.BGEM3RegistryName, len(texts), len(res.DenseVecs)); err != nil {
		return embedding.Embeddings{}, err
	}
	return embedding.Embeddings{Float64: res.DenseVecs}, nil
}

// Encode returns dense, sparse and ColBERT output for every text.
func (c *Client) Encode(ctx context.Context, texts []string, purpose embedding.Purpose) ([]embedding.Representation, error) {
	res, err := c.call(ctx, encodeRequest{
		Texts:             texts,
		IsQuery:           purpose == embedding.PurposeQuery,
		ReturnDense:       true,
		ReturnSparse:      true,
		ReturnColbertVecs: true,
	})
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckLength(embedding.BGEM3RegistryName, len(texts), len(res.DenseVecs)); err != nil {
		return nil, err
	}

	out := make([]embedding.Representation, len(texts))
	for i := range texts {
		out[i].Dense = embedding.ToFloat32(res.DenseVecs[i])
		if i < len(res.LexicalWeights) {
			sparse, err := toSparse(res.LexicalWeights[i])
			if err != nil {
				return nil, err
			}
			out[i].Sparse = sparse
		}
		if i < len(res.ColbertVecs) {
			out[i].ColBERT = make([][]float32, len(res.ColbertVecs[i]))
			for j, v := range res.ColbertVecs[i] {
				out[i].ColBERT[j] = embedding.ToFloat32(v)
			}
		}
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, body encodeRequest) (*encodeResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/encode", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("bge-m3 service unreachable", "url", c.baseURL, "error", err)
		return nil, fmt.Errorf("bge-m3 encode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("bge-m3 service error", "status", resp.StatusCode, "body", string(msg))
		return nil, fmt.Errorf("bge-m3 encode: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("bge-m3 decode response: %w", err)
	}
	return &out, nil
}

func toSparse(weights map[string]float64) (map[uint32]float32, error) {
	out := make(map[uint32]float32, len(weights))
	for k, w := range weights {
		id, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bge-m3 lexical weight token %q: %w", k, err)
		}
		out[uint32(id)] = float32(w)
	}
	return out, nil
}
