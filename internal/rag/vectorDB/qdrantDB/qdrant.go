package qdrantDB

import (
	"context"
	"fmt"
	"time"

	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/domain/commonModels"
	"github.com/niexiaoning/deep-searcher/internal/rag/vectorDB"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// qdrantAPI is the subset of *qdrant.Client the store uses.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Close() error
}

type ClientHolder struct {
	QObj      qdrantAPI
	batchSize int
	logger    *logger_i.Logger
}

var _ vectorDB.VectorStore = (*ClientHolder)(nil)

type Settings struct {
	Host   string
	Port   int
	APIKey string
}

// NewClient dials Qdrant over gRPC and checks it is reachable. The client is
// closed when ctx is cancelled.
func NewClient(ctx context.Context, s Settings) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")
	if s.Host == "" {
		s.Host = config.QdrantHost
	}
	if s.Port == 0 {
		s.Port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:          s.Host,
		Port:          s.Port,
		APIKey:        s.APIKey,
		UseTLS:        config.QdrantUseTLS,
		PoolSize:      uint(config.QdrantPoolSize),
		KeepAliveTime: int(config.QdrantKeepAliveTimeout / time.Second),
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(config.QdrantMaxSendMsgSize)),
		},
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	healthCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	reply, err := client.HealthCheck(healthCtx)
	if err != nil {
		logger.Error("Qdrant is offline", "host", s.Host, "port", s.Port, "code", status.Code(err).String())
		_ = client.Close()
		return nil, fmt.Errorf("qdrant health check: %w", err)
	}
	logger.Info("Qdrant connected", "host", s.Host, "port", s.Port, "version", reply.GetVersion())

	holder := newHolder(client, logger)
	go closeQdrant(ctx, holder)
	return holder, nil
}

func newHolder(api qdrantAPI, logger *logger_i.Logger) *ClientHolder {
	return &ClientHolder{QObj: api, batchSize: config.QdrantUpsertBatchSize, logger: logger}
}

func closeQdrant(ctx context.Context, db *ClientHolder) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	err := db.QObj.Close()
	if err != nil {
		db.logger.Error("could not close Qdrant: ", "error:", err)
	}
	db.logger.Info("Closed Qdrant")
}

func (db *ClientHolder) InitCollection(ctx context.Context, dim int, collection, description string, forceNew bool) error {
	if err := vectorDB.ValidateInit(dim, collection); err != nil {
		return err
	}
	log := db.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY), "collection", collection)

	exists, err := db.QObj.CollectionExists(ctx, collection)
	if err != nil {
		log.Error("could not check collection", "code", status.Code(err).String(), "error", err)
		return fmt.Errorf("qdrant collection exists: %w", err)
	}

	if exists && forceNew {
		log.Info("Dropping existing collection")
		if err := db.QObj.DeleteCollection(ctx, collection); err != nil {
			return fmt.Errorf("qdrant drop collection: %w", err)
		}
		exists = false
	}

	if exists {
		info, err := db.QObj.GetCollectionInfo(ctx, collection)
		if err != nil {
			return fmt.Errorf("qdrant collection info: %w", err)
		}
		size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
		return vectorDB.CheckDimension(collection, int(size), dim)
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
		Metadata: qdrant.NewValueMap(map[string]any{"description": description}),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("qdrant create collection %q raced with another writer: %w", collection, err)
		}
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	log.Info("Collection created", "dimension", dim)
	return nil
}

func (db *ClientHolder) InsertData(ctx context.Context, collection string, chunks []commonModels.DocChunk) error {
	log := db.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY), "collection", collection)

	for start := 0; start < len(chunks); start += db.batchSize {
		end := min(start+db.batchSize, len(chunks))
		if err := db.upsertBatch(ctx, collection, chunks[start:end]); err != nil {
			log.Error("upsert failed", "batchStart", start, "code", status.Code(err).String(), "error", err)
			return err
		}
	}
	log.Info("Inserted chunks", "count", len(chunks))
	return nil
}

func (db *ClientHolder) upsertBatch(ctx context.Context, collection string, chunks []commonModels.DocChunk) error {
	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", chunk.ChunkId)
		}
		payload, err := qdrant.TryValueMap(chunkPayload(chunk))
		if err != nil {
			return fmt.Errorf("chunk %s payload: %w", chunk.ChunkId, err)
		}
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: payload,
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func chunkPayload(chunk commonModels.DocChunk) map[string]any {
	metadata := make(map[string]any, len(chunk.Metadata))
	for k, v := range chunk.Metadata {
		metadata[k] = v
	}
	return map[string]any{
		"content":       chunk.Chunk,
		"reference":     chunk.Reference,
		"page_num":      chunk.PageNum,
		"source_doc_id": chunk.Doc.Id,
		"doc_name":      chunk.Doc.Name,
		"chunk_order":   chunk.ChunkPageOrder,
		"chunk_id":      chunk.ChunkId,
		"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
		"metadata":      metadata,
	}
}
